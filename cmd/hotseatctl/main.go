package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/park285/cheese-hotseat/internal/hotseatclient"
	"github.com/park285/cheese-hotseat/pkg/hotseatdto"
)

const usage = `usage: hotseatctl <command> [args]

  state              print the current frame
  click ROW COL      click a square
  button NAME|INDEX  press a menu button (start, resume, save, queen, ... or 0-based index)
  escape             toggle the pause menu
  save [SLOT]        save the game (slot name generated when omitted)
  load [SLOT]        load a slot (last used slot when omitted)
  slots              list saved slots
  screen FILE        write the current frame as PNG
  watch              stream frames until interrupted

HOTSEAT_URL selects the server (default http://localhost:8080).`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	baseURL := os.Getenv("HOTSEAT_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	client := hotseatclient.NewClient(baseURL, hotseatclient.WithTimeout(8*time.Second))

	cmd, args := os.Args[1], os.Args[2:]
	if cmd == "watch" {
		watch(client.BaseURL())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var (
		st  *hotseatdto.State
		err error
	)
	switch cmd {
	case "state":
		st, err = client.State(ctx)
	case "click":
		if len(args) != 2 {
			log.Fatal("click needs ROW COL")
		}
		row, col := mustInt(args[0]), mustInt(args[1])
		st, err = client.ClickSquare(ctx, row, col)
	case "button":
		if len(args) != 1 {
			log.Fatal("button needs NAME or INDEX")
		}
		if i, convErr := strconv.Atoi(args[0]); convErr == nil {
			st, err = client.Choose(ctx, i)
		} else {
			st, err = client.Button(ctx, args[0])
		}
	case "escape":
		st, err = client.Escape(ctx)
	case "save":
		st, err = client.Save(ctx, optArg(args))
	case "load":
		st, err = client.Load(ctx, optArg(args))
	case "slots":
		slots, err := client.Slots(ctx)
		if err != nil {
			log.Fatalf("slots: %v", err)
		}
		for _, s := range slots {
			fmt.Println(s)
		}
		return
	case "screen":
		if len(args) != 1 {
			log.Fatal("screen needs FILE")
		}
		png, err := client.Screen(ctx)
		if err != nil {
			log.Fatalf("screen: %v", err)
		}
		if err := os.WriteFile(args[0], png, 0o644); err != nil {
			log.Fatalf("write %s: %v", args[0], err)
		}
		return
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if st != nil {
		printState(os.Stdout, st)
	}
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func watch(baseURL string) {
	w := hotseatclient.NewWatcher(hotseatclient.WatchURL(baseURL), 5)
	w.OnStateChange(func(s hotseatclient.WatchState) {
		log.Printf("watch state: %s", s)
	})
	w.OnFrame(func(st *hotseatdto.State) {
		printState(os.Stdout, st)
		fmt.Println()
	})

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := w.Connect(cctx); err != nil {
		log.Printf("watch connect error: %v", err)
	}
	cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = w.Close(ctx)
}

func mustInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("not a number: %q", s)
	}
	return n
}

func optArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
