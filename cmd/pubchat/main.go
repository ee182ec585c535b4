// Command pubchat is a terminal chat client. It connects to a relay,
// joins a channel and reconciles the shared message list locally;
// typed lines are published, slash commands edit and delete.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"pubchat/pkg/config"
	"pubchat/pkg/logger"
	"pubchat/pkg/session"
	"pubchat/pkg/transport"
)

func main() {
	_ = godotenv.Load(".env")

	urlFlag := flag.String("url", "", "relay websocket URL (ws://host:port/v1/ws)")
	channelFlag := flag.String("channel", "", "chat channel to join")
	userFlag := flag.Int64("user", 0, "numeric user id")
	cfgFlag := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	cfgPath := config.ResolveConfigPath(*cfgFlag, setFlags["config"])
	cfg, _, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	url := cfg.Session.URL
	if setFlags["url"] {
		url = *urlFlag
	}
	channel := cfg.Session.Channel
	if setFlags["channel"] {
		channel = *channelFlag
	}
	userID := cfg.Session.UserID
	if setFlags["user"] {
		userID = *userFlag
	}
	if url == "" || channel == "" || userID == 0 {
		log.Fatal("need --url, --channel and --user (or config equivalents)")
	}

	logger.InitWithLevel(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tr, err := transport.Dial(ctx, url)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", url, err)
	}
	defer tr.Close()

	sess := session.New(session.Config{
		Channel:            channel,
		UserID:             userID,
		RemoteTypingExpiry: cfg.RemoteTypingExpiry(),
		LocalTypingStop:    cfg.LocalTypingStop(),
	}, tr, session.Handlers{
		RowInserted: func(i int) { fmt.Printf("\r<< new message at row %d\n> ", i) },
		RowUpdated:  func(i int) { fmt.Printf("\r<< row %d updated\n> ", i) },
		RowDeleted:  func(i int) { fmt.Printf("\r<< row %d deleted\n> ", i) },
		TypingStarted: func() { fmt.Print("\r<< someone is typing...\n> ") },
		TypingStopped: func() { fmt.Print("\r<< typing stopped\n> ") },
	})

	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run(ctx) }()

	fmt.Printf("joined %s as user %d; /help for commands\n", channel, userID)
	go func() {
		readLoop(ctx, sess)
		stop()
	}()

	if err := <-runErr; err != nil && err != context.Canceled {
		logger.Error("session_exited", "error", err)
		os.Exit(1)
	}
}

func readLoop(ctx context.Context, sess *session.Session) {
	sc := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case line == "/help":
			fmt.Println("/list          show messages")
			fmt.Println("/edit N TEXT   edit row N")
			fmt.Println("/del N         delete row N")
			fmt.Println("/typing on|off toggle the typing indicator")
			fmt.Println("/quit          exit")
		case line == "/quit":
			return
		case line == "/list":
			n := sess.Len()
			for i := 0; i < n; i++ {
				marker := "  "
				if sess.IsMine(i) {
					marker = "* "
				}
				fmt.Printf("%s%3d  %s\n", marker, i, sess.TextAt(i))
			}
		case strings.HasPrefix(line, "/edit "):
			rest := strings.TrimPrefix(line, "/edit ")
			idx, text, ok := splitIndexArg(rest)
			if !ok || text == "" {
				fmt.Println("usage: /edit N TEXT")
				break
			}
			sess.Edit(idx, text)
		case strings.HasPrefix(line, "/del "):
			idx, _, ok := splitIndexArg(strings.TrimPrefix(line, "/del "))
			if !ok {
				fmt.Println("usage: /del N")
				break
			}
			sess.Delete(idx)
		case line == "/typing on":
			sess.SetTyping(true)
		case line == "/typing off":
			sess.SetTyping(false)
		case strings.HasPrefix(line, "/"):
			fmt.Println("unknown command; /help")
		default:
			sess.Send(line)
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		fmt.Print("> ")
	}
}

func splitIndexArg(s string) (int, string, bool) {
	s = strings.TrimSpace(s)
	fields := strings.SplitN(s, " ", 2)
	idx, err := strconv.Atoi(fields[0])
	if err != nil || idx < 0 {
		return 0, "", false
	}
	rest := ""
	if len(fields) == 2 {
		rest = strings.TrimSpace(fields[1])
	}
	return idx, rest, true
}
