package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/nomisrosen/Hash-Chat-2/internal/client"
)

const maxImageBytes = 512 << 10

func main() {
	server := flag.String("server", "ws://localhost:3000/ws", "chat server websocket URL")
	name := flag.String("name", "", "display name (random pseudonym if empty)")
	flag.Parse()

	p := &printer{}
	ctrl := client.NewController(*server, *name, maxImageBytes, p)

	fmt.Println("Commands: /join <phrase>  /rooms  /switch <n>  /leave  /close <n>  /image <path>  /quit")
	fmt.Println("Anything else is sent to the active room, encrypted.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			send(ctrl, line)
			continue
		}
		if !runCommand(ctrl, line) {
			return
		}
	}
}

// runCommand returns false when the client should exit.
func runCommand(ctrl *client.Controller, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/join":
		if arg == "" {
			fmt.Println("usage: /join <secret phrase>")
			return true
		}
		handle, err := ctrl.Open(context.Background(), arg)
		if err != nil {
			fmt.Println("join failed:", err)
			return true
		}
		fmt.Printf("joined room %.12s…\n", handle.Address)

	case "/rooms":
		active, _ := ctrl.ActiveAddress()
		for i, h := range ctrl.Rooms() {
			marker := " "
			if h.Address == active {
				marker = "*"
			}
			fmt.Printf("%s %d. %s (%.12s…)\n", marker, i+1, h.Label, h.Address)
		}

	case "/switch":
		h, ok := roomByIndex(ctrl, arg)
		if !ok {
			return true
		}
		if err := ctrl.Switch(context.Background(), h.Address); err != nil {
			fmt.Println("switch failed:", err)
		}

	case "/leave":
		ctrl.Leave()
		fmt.Println("left the room (still listed in /rooms)")

	case "/close":
		h, ok := roomByIndex(ctrl, arg)
		if !ok {
			return true
		}
		if err := ctrl.Close(h.Address); err != nil {
			fmt.Println("close failed:", err)
		}

	case "/image":
		sendImage(ctrl, arg)

	case "/quit":
		ctrl.Leave()
		return false

	default:
		fmt.Println("unknown command:", cmd)
	}
	return true
}

func send(ctrl *client.Controller, text string) {
	ctrl.Typing(true)
	err := ctrl.SendText(text)
	ctrl.Typing(false)
	if err != nil {
		fmt.Println("send failed:", err)
	}
}

func sendImage(ctrl *client.Controller, path string) {
	if path == "" {
		fmt.Println("usage: /image <path>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("read failed:", err)
		return
	}
	mime := mimeForExt(filepath.Ext(path))
	if mime == "" {
		fmt.Println("unsupported image type:", filepath.Ext(path))
		return
	}
	uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	if err := ctrl.SendImage(uri); err != nil {
		fmt.Println("send failed:", err)
	}
}

func mimeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return ""
}

func roomByIndex(ctrl *client.Controller, arg string) (client.RoomHandle, bool) {
	rooms := ctrl.Rooms()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(rooms) {
		fmt.Println("usage: give a room number from /rooms")
		return client.RoomHandle{}, false
	}
	return rooms[n-1], true
}

// printer renders room events to stdout.
type printer struct {
	mu sync.Mutex
}

func (p *printer) Joined(roomAddress, username string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("you are %s in room %.12s…\n", username, roomAddress)
}

func (p *printer) History(roomAddress string, msgs []client.DisplayMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(msgs) == 0 {
		fmt.Println("(no history)")
		return
	}
	fmt.Printf("--- last %d messages ---\n", len(msgs))
	for _, m := range msgs {
		printMessage(m)
	}
	fmt.Println("---")
}

func (p *printer) Message(roomAddress string, msg client.DisplayMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	printMessage(msg)
}

func (p *printer) Typing(roomAddress, username string, typing bool) {
	if !typing {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("* %s is typing…\n", username)
}

func (p *printer) Disconnected(roomAddress string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("disconnected from %.12s…: %v\n", roomAddress, err)
}

func printMessage(m client.DisplayMessage) {
	switch {
	case m.User == "System":
		fmt.Printf("  %s\n", m.Text)
	case m.Kind == "image":
		fmt.Printf("%s sent an image (%d bytes)\n", m.User, len(m.Text))
	default:
		fmt.Printf("%s: %s\n", m.User, m.Text)
	}
}
