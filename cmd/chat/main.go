package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	"driftline/internal/auth"
	"driftline/internal/blob"
	"driftline/internal/chatview"
	"driftline/internal/config"
	"driftline/internal/feed"
	"driftline/internal/remote"
	"driftline/pkg/logger"
)

const usage = `
driftline chat - terminal client

Usage:
  chat -email you@example.com -password secret -peer <user-id> [flags]

Flags:
  -email string     Account email (required)
  -password string  Account password (required)
  -peer string      Peer user id to chat with (required)
  -register         Create the account first
  -name string      Display name, used with -register

Commands once connected:
  /react <message-id> <kind>   Toggle a reaction
  /edit <message-id> <text>    Rewrite a message
  /delete <message-id>         Delete a message
  /img <path> [caption]        Send an image
  /quit                        Exit
  anything else                Send as a text message
`

func main() {
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password")
	peer := flag.String("peer", "", "peer user id")
	register := flag.Bool("register", false, "create the account first")
	name := flag.String("name", "", "display name for -register")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if *email == "" || *password == "" || *peer == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Server.Environment)
	logger.SetGlobalLogger(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := auth.NewSession()
	client := remote.NewClient(cfg.Backend.BaseURL, session)

	if *register {
		if err := client.Register(ctx, *name, *email, *password); err != nil {
			log.Fatalf("Register failed: %v", err)
		}
	} else if err := client.Login(ctx, *email, *password); err != nil {
		log.Fatalf("Login failed: %v", err)
	}

	var f feed.Feed
	switch cfg.Backend.Feed {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		f = feed.NewRedisFeed(redisClient, appLogger)
	default:
		ws := feed.NewWSFeed(cfg.Backend.RealtimeURL, func() http.Header {
			h := http.Header{}
			if token, err := session.Token(); err == nil {
				h.Set("Authorization", "Bearer "+token)
			}
			return h
		}, appLogger)
		ws.Start(ctx)
		defer ws.Close()
		f = ws
	}

	sub := chatview.NewStreamSubscriber(f)

	var uploader chatview.ImageUploader
	if cfg.Storage.Bucket != "" {
		blobClient, err := blob.NewClient(ctx, blob.S3Config{
			Region:     cfg.Storage.Region,
			Bucket:     cfg.Storage.Bucket,
			AccessKey:  cfg.Storage.AccessKey,
			SecretKey:  cfg.Storage.SecretKey,
			Endpoint:   cfg.Storage.Endpoint,
			PublicBase: cfg.Storage.PublicBase,
		})
		if err != nil {
			log.Fatalf("Blob store setup failed: %v", err)
		}
		uploader = blobClient
	}

	directory := chatview.NewChatDirectory(client.Chats(), sub)
	chat, err := directory.Ensure(ctx, session.UserID(), *peer, *peer)
	if err != nil {
		log.Fatalf("Open conversation failed: %v", err)
	}

	rec := chatview.NewReconciler(client.Messages(), client.Chats(), sub, uploader, appLogger)
	rec.SetOnChange(func() { render(rec, session.UserID()) })

	teardown, err := rec.Open(ctx, chat.ID, session.UserID())
	if err != nil {
		log.Fatalf("Open chat %s failed: %v", chat.ID, err)
	}
	defer teardown()

	fmt.Printf("connected to chat %s as %s\n", chat.ID, session.Name())
	inputLoop(ctx, rec, uploader)
}

func inputLoop(ctx context.Context, rec *chatview.Reconciler, uploader chatview.ImageUploader) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			return
		}

		var err error
		switch {
		case strings.HasPrefix(line, "/react "):
			fields := strings.Fields(line)
			if len(fields) != 3 {
				fmt.Println("usage: /react <message-id> <kind>")
				continue
			}
			err = rec.SetReaction(ctx, fields[1], fields[2])
		case strings.HasPrefix(line, "/edit "):
			fields := strings.SplitN(line, " ", 3)
			if len(fields) != 3 {
				fmt.Println("usage: /edit <message-id> <text>")
				continue
			}
			err = rec.EditMessage(ctx, fields[1], fields[2])
		case strings.HasPrefix(line, "/delete "):
			fields := strings.Fields(line)
			if len(fields) != 2 {
				fmt.Println("usage: /delete <message-id>")
				continue
			}
			err = rec.DeleteMessage(ctx, fields[1])
		case strings.HasPrefix(line, "/img "):
			if uploader == nil {
				fmt.Println("image uploads need S3_BUCKET configured")
				continue
			}
			fields := strings.SplitN(line, " ", 3)
			caption := ""
			if len(fields) == 3 {
				caption = fields[2]
			}
			err = sendImage(ctx, rec, fields[1], caption)
		default:
			_, err = rec.SendMessage(ctx, line)
		}
		if err != nil {
			fmt.Printf("error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func sendImage(ctx context.Context, rec *chatview.Reconciler, path, caption string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".gif":
		contentType = "image/gif"
	case ".webp":
		contentType = "image/webp"
	}

	_, err = rec.SendImage(ctx, caption, file, contentType)
	return err
}

func render(rec *chatview.Reconciler, selfID string) {
	reactions := rec.Reactions()
	for _, msg := range rec.Messages() {
		who := msg.SenderID
		if msg.SenderID == selfID {
			who = "you"
		}
		line := fmt.Sprintf("[%s] %s: %s", msg.ID[:8], who, msg.Content)
		if msg.ImageURL != "" {
			line += " <" + msg.ImageURL + ">"
		}
		if msg.Edited {
			line += " (edited)"
		}
		if byUser := reactions[msg.ID]; len(byUser) > 0 {
			var kinds []string
			for _, kind := range byUser {
				kinds = append(kinds, kind)
			}
			line += " [" + strings.Join(kinds, " ") + "]"
		}
		fmt.Println(line)
	}
	fmt.Println("---")
}
