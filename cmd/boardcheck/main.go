package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/boardclient"
)

// boardcheck plays a couple of clicks against a running server and prints
// the resulting position.
func main() {
	baseURL := os.Getenv("BOARD_BASE_URL")
	wsURL := os.Getenv("BOARD_WS_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}

	client := boardclient.NewClient(baseURL, boardclient.WithTimeout(8*time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	st, err := client.CreateSession(ctx)
	if err != nil {
		log.Fatalf("create session: %v", err)
	}
	log.Printf("session=%s %s", st.ID, st.Status)

	var watcher *boardclient.Watcher
	if wsURL != "" {
		watcher, err = boardclient.Watch(ctx, wsURL, st.ID)
		if err != nil {
			log.Printf("WS watch error: %v", err)
		} else {
			defer watcher.Close()
			go func() {
				for ev := range watcher.Events() {
					log.Printf("WS event type=%s outcome=%s msg=%q", ev.Type, ev.Outcome, ev.Message)
				}
			}()
		}
	}

	for _, sq := range []string{"e2", "e4", "e7", "e5"} {
		resp, err := client.Click(ctx, st.ID, sq)
		if err != nil {
			log.Fatalf("click %s: %v", sq, err)
		}
		log.Printf("click %s -> %s: %s", sq, resp.Outcome, resp.Message)
		st = resp.State
	}

	b, err := board.FromPlacement(st.Placement)
	if err != nil {
		log.Fatalf("decode placement %q: %v", st.Placement, err)
	}
	fmt.Print(b.Draw())
	fmt.Println(st.Placement)
	fmt.Println(st.Status)

	if err := client.DeleteSession(ctx, st.ID); err != nil {
		log.Printf("delete session: %v", err)
	}
}
