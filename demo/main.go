package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"reelsmith/demo/tui"
)

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("url", "http://localhost:8000", "reelsmith API URL")
	prompt := flag.String("prompt", "A serene mountain lake at sunrise with mist rising from the water", "Generation prompt")
	email := flag.String("email", "", "User email to attribute the video to")
	flag.Parse()

	m := tui.NewModel(*apiURL, *prompt, *email)
	program := tea.NewProgram(m)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
