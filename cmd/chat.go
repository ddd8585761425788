package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ait-tooling/ait/internal/bus"
	"github.com/ait-tooling/ait/internal/dependency"
	"github.com/ait-tooling/ait/internal/history"
	"github.com/ait-tooling/ait/internal/shared/cmdutils"
)

var chatMessage string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant from the terminal",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message and exit")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	container, err := dependency.New(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := startPrinter(container.Hub())
	defer p.stop()

	chat := container.Chat()
	if chatMessage != "" {
		err := chat.SendMessage(ctx, chatMessage)
		p.flush()
		return err
	}
	return runInteractive(ctx, chat, p)
}

// runInteractive reads lines from stdin and runs each as one submission.
func runInteractive(ctx context.Context, chat *history.Chat, p *printer) error {
	fmt.Printf("%s Interactive mode (type 'exit' or Ctrl+C to quit)\n\n", logo)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("You: ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Println("\nGoodbye!")
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Println("\nGoodbye!")
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if exitCommands[strings.ToLower(line)] {
			fmt.Println("Goodbye!")
			return nil
		}

		if err := chat.SendMessage(ctx, line); err != nil {
			p.flush()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		p.flush()
	}
}

// printer renders hub notifications as they arrive. flush returns once every
// notification published so far has been printed.
type printer struct {
	msgs        <-chan bus.DialogMessage
	unsubscribe func()
	flushes     chan chan struct{}
	done        chan struct{}
}

func startPrinter(hub *bus.Hub) *printer {
	msgs, unsubscribe := hub.Subscribe(256)
	p := &printer{
		msgs:        msgs,
		unsubscribe: unsubscribe,
		flushes:     make(chan chan struct{}),
		done:        make(chan struct{}),
	}
	go p.loop()
	return p
}

func (p *printer) loop() {
	defer close(p.done)
	for {
		select {
		case msg, ok := <-p.msgs:
			if !ok {
				return
			}
			cmdutils.PrintNotification(msg)
		case ack := <-p.flushes:
			p.drain()
			close(ack)
		}
	}
}

func (p *printer) drain() {
	for {
		select {
		case msg, ok := <-p.msgs:
			if !ok {
				return
			}
			cmdutils.PrintNotification(msg)
		default:
			return
		}
	}
}

func (p *printer) flush() {
	ack := make(chan struct{})
	select {
	case p.flushes <- ack:
		<-ack
	case <-p.done:
	}
}

func (p *printer) stop() {
	p.unsubscribe()
	<-p.done
}
