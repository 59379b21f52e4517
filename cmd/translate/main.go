package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/language"
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/session"
)

var (
	serverAddr = flag.String("addr", "http://localhost:8080", "Tradutor server base URL")
	sourceLang = flag.String("source", "pt", "Source language code (e.g., pt, en)")
	targetLang = flag.String("target", "en", "Target language code (e.g., en, es)")
	textFile   = flag.String("file", "", "Path to text file to translate")
	text       = flag.String("text", "", "Text to translate (if file not provided)")
	watch      = flag.Bool("watch", false, "Translate each line read from stdin")
	waitTime   = flag.Duration("timeout", 30*time.Second, "How long to wait for each translation")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	// Read text to translate
	var textToTranslate string
	if !*watch {
		if *textFile != "" {
			// Read from file
			data, err := os.ReadFile(*textFile)
			if err != nil {
				logger.WithError(err).Fatalf("Failed to read file: %s", *textFile)
			}
			textToTranslate = string(data)
		} else if *text != "" {
			textToTranslate = *text
		} else {
			logger.Fatal("Either -file, -text or -watch must be provided")
		}

		if strings.TrimSpace(textToTranslate) == "" {
			logger.Fatal("Text to translate is empty")
		}
	}

	logger.WithFields(logrus.Fields{
		"server":      *serverAddr,
		"source_lang": *sourceLang,
		"target_lang": *targetLang,
	}).Info("Creating translation session...")

	// No client-level timeout: the event stream stays open for the whole run.
	// Individual requests carry their own context deadlines.
	client := &http.Client{}
	base := strings.TrimRight(*serverAddr, "/")

	snap, err := createSession(client, base, *sourceLang, *targetLang)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create session")
	}
	defer deleteSession(client, base, snap.ID)

	logger.WithFields(logrus.Fields{
		"session_id": snap.ID,
	}).Info("Session created successfully")

	streamCtx, streamCancel := context.WithCancel(context.Background())
	defer streamCancel()

	events, err := streamEvents(streamCtx, client, base, snap.ID)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open event stream")
	}

	if *watch {
		watchStdin(logger, client, base, snap.ID, events)
		return
	}

	startTime := time.Now()
	result, err := translateOnce(client, base, snap.ID, textToTranslate, events)
	if err != nil {
		logger.WithError(err).Fatal("Translation failed")
	}
	duration := time.Since(startTime)

	if result.Error != nil {
		logger.WithFields(logrus.Fields{
			"error_kind": result.Error.Kind,
			"error":      result.Error.Message,
		}).Fatal("Translation was not successful")
	}

	printResult(textToTranslate, result, duration)

	logger.WithFields(logrus.Fields{
		"duration_seconds": duration.Seconds(),
		"source_lang":      result.SourceLang,
		"target_lang":      result.TargetLang,
	}).Info("Translation completed successfully")
}

// translateOnce submits text and waits for the snapshot that carries its
// outcome. The edit echo and any leftover snapshots from an earlier
// submission still show the previous output; the real result is the first
// non-loading snapshot after this submission's own loading flip.
func translateOnce(client *http.Client, base, id, text string, events <-chan session.Snapshot) (session.Snapshot, error) {
	if err := postInput(client, base, id, text); err != nil {
		return session.Snapshot{}, err
	}

	deadline := time.NewTimer(*waitTime)
	defer deadline.Stop()

	loadingSeen := false
	for {
		select {
		case snap, ok := <-events:
			if !ok {
				return session.Snapshot{}, errors.New("event stream closed by server")
			}
			if snap.InputText != text {
				continue
			}
			if snap.Loading {
				loadingSeen = true
				continue
			}
			if loadingSeen {
				return snap, nil
			}
		case <-deadline.C:
			return session.Snapshot{}, fmt.Errorf("timed out after %s waiting for translation", *waitTime)
		}
	}
}

// watchStdin translates each non-empty stdin line as it arrives.
func watchStdin(logger *logrus.Logger, client *http.Client, base, id string, events <-chan session.Snapshot) {
	logger.Info("Watching stdin, one line per translation (Ctrl-D to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		snap, err := translateOnce(client, base, id, line, events)
		if err != nil {
			logger.WithError(err).Error("Translation failed")
			continue
		}
		if snap.Error != nil {
			logger.WithFields(logrus.Fields{
				"error_kind": snap.Error.Kind,
			}).Warn(snap.Error.Message)
			continue
		}
		fmt.Printf("[%s -> %s] %s\n", snap.SourceLang, snap.TargetLang, snap.TranslatedText)
	}
	if err := scanner.Err(); err != nil {
		logger.WithError(err).Error("Failed to read stdin")
	}
}

func printResult(original string, snap session.Snapshot, duration time.Duration) {
	separator := strings.Repeat("=", 80)
	dashLine := strings.Repeat("-", 80)

	fmt.Println()
	fmt.Println(separator)
	fmt.Println("TRANSLATION RESULTS")
	fmt.Println(separator)
	fmt.Printf("\nSource Language: %s (%s)\n", snap.SourceLang, language.DisplayName(snap.SourceLang.String()))
	fmt.Printf("Target Language: %s (%s)\n", snap.TargetLang, language.DisplayName(snap.TargetLang.String()))
	fmt.Printf("Translation Time: %.2f seconds\n", duration.Seconds())
	fmt.Println()
	fmt.Println(dashLine)
	fmt.Println("ORIGINAL TEXT:")
	fmt.Println(dashLine)
	fmt.Println(original)
	fmt.Println()
	fmt.Println(dashLine)
	fmt.Println("TRANSLATED TEXT:")
	fmt.Println(dashLine)
	fmt.Println(snap.TranslatedText)
	fmt.Println()
	fmt.Println(separator)
}

func createSession(client *http.Client, base, source, target string) (session.Snapshot, error) {
	payload, err := json.Marshal(map[string]string{
		"source": source,
		"target": target,
	})
	if err != nil {
		return session.Snapshot{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/v1/sessions", bytes.NewReader(payload))
	if err != nil {
		return session.Snapshot{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return session.Snapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return session.Snapshot{}, fmt.Errorf("create session returned status %d", resp.StatusCode)
	}

	var snap session.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return session.Snapshot{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return snap, nil
}

func postInput(client *http.Client, base, id, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/api/v1/sessions/%s/input", base, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("input request returned status %d", resp.StatusCode)
	}
	return nil
}

func deleteSession(client *http.Client, base, id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/api/v1/sessions/%s", base, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return
	}
	if resp, err := client.Do(req); err == nil {
		resp.Body.Close()
	}
}

// streamEvents opens the server-sent events feed and delivers each state
// snapshot on the returned channel. The channel closes when the stream ends.
func streamEvents(ctx context.Context, client *http.Client, base, id string) (<-chan session.Snapshot, error) {
	url := fmt.Sprintf("%s/api/v1/sessions/%s/events", base, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("event stream returned status %d", resp.StatusCode)
	}

	events := make(chan session.Snapshot, 16)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}

			var snap session.Snapshot
			if err := json.Unmarshal([]byte(line[len("data: "):]), &snap); err != nil {
				continue
			}

			select {
			case events <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
