package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-requestform"
	"github.com/goliatone/go-requestform/pkg/helpcenter"
	"github.com/goliatone/go-requestform/pkg/model"
	"github.com/goliatone/go-requestform/pkg/prefill"
	"github.com/goliatone/go-requestform/pkg/renderers/tui"
	"github.com/goliatone/go-requestform/pkg/schema"
	"github.com/goliatone/go-requestform/pkg/session"
	"github.com/goliatone/go-requestform/pkg/submit"
)

func main() {
	source := flag.String("source", "examples/fixtures/request_form.json", "form schema path or URL")
	mode := flag.String("mode", "fill", "mode: validate, fill or dry-run")
	baseURL := flag.String("base-url", "", "help center base URL (enables real submission)")
	email := flag.String("email", "", "prefill the requester email field")
	ccs := flag.String("ccs", "", "prefill CC addresses, comma-separated")
	richText := flag.Bool("rich-text", false, "treat the description field as rich text")
	flag.Parse()

	ctx := context.Background()

	src := parseSource(*source)
	if src == nil {
		log.Fatalf("invalid source: %q", *source)
	}

	form, err := requestform.Load(ctx, src, schema.LoaderOptions{AllowHTTPFallback: true})
	if err != nil {
		log.Fatalf("Failed to load form: %v", err)
	}

	switch *mode {
	case "validate":
		runValidate(form)
	case "fill", "dry-run":
		runFill(ctx, form, fillConfig{
			baseURL:  *baseURL,
			email:    *email,
			ccs:      splitCCs(*ccs),
			richText: *richText,
			dryRun:   *mode == "dry-run" || *baseURL == "",
		})
	default:
		log.Fatalf("unknown mode: %q", *mode)
	}
}

func runValidate(form model.RequestForm) {
	result := requestform.Validate(form)
	if result.Valid {
		fmt.Printf("OK: %d fields, %d conditions\n", len(form.Fields), len(form.Conditions))
		return
	}
	for _, issue := range result.Issues {
		if issue.Field != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", issue.Field, issue.Message)
			continue
		}
		fmt.Fprintln(os.Stderr, issue.Message)
	}
	os.Exit(1)
}

type fillConfig struct {
	baseURL  string
	email    string
	ccs      []string
	richText bool
	dryRun   bool
}

func runFill(ctx context.Context, form model.RequestForm, cfg fillConfig) {
	options := []session.Option{
		session.WithRichText(cfg.richText),
		session.WithOverrides(prefill.Overrides{
			Email: cfg.email,
			CCs:   cfg.ccs,
		}),
	}

	if cfg.dryRun {
		options = append(options, session.WithSubmission(staticToken("dry-run-token"), printSubmitter{}))
	} else {
		client, err := helpcenter.New(cfg.baseURL)
		if err != nil {
			log.Fatalf("Failed to build help center client: %v", err)
		}
		submitter, err := submit.NewHTTPSubmitter(cfg.baseURL, nil)
		if err != nil {
			log.Fatalf("Failed to build submitter: %v", err)
		}
		options = append(options, session.WithSubmission(client, submitter))
	}

	sess, err := requestform.NewSession(form, options...)
	if err != nil {
		log.Fatalf("Failed to mount form: %v", err)
	}

	if err := tui.New().Run(ctx, sess); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			fmt.Println("Aborted.")
			return
		}
		log.Fatalf("Failed to submit: %v", err)
	}
	fmt.Println("Request submitted.")
}

// staticToken satisfies the token source for dry runs where no help center is
// reachable.
type staticToken string

func (t staticToken) CSRFToken(context.Context) (string, error) {
	return string(t), nil
}

// printSubmitter writes the serialized post to stdout instead of sending it.
type printSubmitter struct{}

func (printSubmitter) Submit(_ context.Context, target model.SubmitTarget, values []submit.FormValue) error {
	fmt.Printf("%s %s\n", strings.ToUpper(target.Method), target.Action)
	for _, v := range values {
		fmt.Printf("  %s=%s\n", v.Name, v.Value)
	}
	return nil
}

func parseSource(raw string) schema.Source {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return schema.SourceFromURL(path)
	}
	return schema.SourceFromFile(path)
}

func splitCCs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
