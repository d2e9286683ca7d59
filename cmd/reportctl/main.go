// reportctl drives the scan-and-purchase pipeline from the command line:
// submit a scan, start a purchase, resume after a payment redirect, and
// redeem a download token.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/shaharz/negishscan/pkg/flow"
)

func main() {
	server := flag.String("server", envOr("REPORTCTL_SERVER", "http://localhost:8080"), "server origin")
	sessionPath := flag.String("session-file", envOr("REPORTCTL_SESSION_FILE", defaultSessionPath()), "where the active payment session is persisted")
	outDir := flag.String("out", ".", "directory for downloaded reports")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	saver := func(filename string, document []byte) error {
		path := filepath.Join(*outDir, filename)
		if err := os.WriteFile(path, document, 0o644); err != nil {
			return err
		}
		fmt.Printf("saved %s (%d bytes)\n", path, len(document))
		return nil
	}

	f := flow.New(*server, flow.DeliveryPaid, flow.NewFileSessionStore(*sessionPath), saver)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "scan":
		err = runScan(ctx, f, flag.Arg(1))
	case "buy":
		err = runBuy(ctx, f, flag.Arg(1), flag.Arg(2))
	case "resume":
		err = runResume(ctx, f, flag.Arg(1))
	case "download":
		err = f.Download(ctx, flag.Arg(1))
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func runScan(ctx context.Context, f *flow.Flow, rawURL string) error {
	res, _, err := f.Scan(ctx, rawURL)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// runBuy scans first so the purchase has an active result, then opens the
// payment session and prints the provider URL for the user to visit.
func runBuy(ctx context.Context, f *flow.Flow, rawURL, email string) error {
	if _, _, err := f.Scan(ctx, rawURL); err != nil {
		return err
	}
	f.OpenPurchase()
	for _, eff := range f.StartPurchase(ctx, email) {
		switch eff := eff.(type) {
		case flow.Redirect:
			fmt.Printf("complete the payment at:\n  %s\n", eff.URL)
			fmt.Println("then run: reportctl resume <return-url>")
		case flow.ShowError:
			return eff.Err
		}
	}
	return nil
}

// runResume replays the return navigation. pageURL is the address the
// provider redirected to, including any cancellation parameter.
func runResume(ctx context.Context, f *flow.Flow, pageURL string) error {
	if pageURL == "" {
		pageURL = "http://localhost/"
	}
	_, effects, err := f.HandleReturn(ctx, pageURL)
	for _, eff := range effects {
		switch eff := eff.(type) {
		case flow.ShowNotice:
			fmt.Println(eff.Message)
		case flow.EnableDownload:
			fmt.Println("payment verified, downloading report...")
			if derr := f.Download(ctx, eff.Token); derr != nil {
				return derr
			}
		}
	}
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "reportctl-session.json")
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: reportctl [flags] <command>

commands:
  scan <url>              run an accessibility scan and print the result
  buy <url> <email>       scan and open a payment session
  resume [return-url]     verify payment after returning from the provider
  download <token>        redeem a download token

flags:`)
	flag.PrintDefaults()
}
