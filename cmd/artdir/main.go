package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/etree"
	"github.com/fwojciec/artdir/fs"
	"github.com/fwojciec/artdir/gemini"
	arthttp "github.com/fwojciec/artdir/http"
	"github.com/fwojciec/artdir/imagekit"
	"github.com/fwojciec/artdir/readability"
	"github.com/fwojciec/artdir/repair"
	"github.com/fwojciec/artdir/rod"
	artslog "github.com/fwojciec/artdir/slog"
	"github.com/fwojciec/artdir/sqlite"
	"github.com/fwojciec/artdir/toml"
	"github.com/fwojciec/artdir/trafilatura"
	"github.com/fwojciec/artdir/yaml"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		PrintError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Relative paths are resolved against the project root.
	// Set before calling Run().
	DBPath string

	// SQLite database holding the image inventory. Opened only by commands
	// that need it.
	DB *sqlite.DB

	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(os.Getenv),
		Getenv: os.Getenv,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Now:    time.Now,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("artdir"),
		kong.Description("Data, image, and SEO tooling for the art appraiser directory"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'artdir --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := kongCtx.Command()

	if err := m.configure(deps, cli, stderr); err != nil {
		return err
	}
	defer m.Close()

	// Command-specific dependencies.
	if strings.HasPrefix(cmd, "images") || cmd == "imagekit sync" {
		if err := m.openDB(deps); err != nil {
			fmt.Fprintf(stderr, "Hint: Set ARTDIR_DB to use a different database path\n")
			return err
		}
	}

	if strings.HasPrefix(cmd, "imagekit") {
		if err := m.wireImageKit(deps); err != nil {
			return err
		}
	}

	if cmd == "enrich" && cli.Enrich.AI {
		if err := m.wireDescriber(ctx, deps, stderr); err != nil {
			return err
		}
	}

	if strings.HasPrefix(cmd, "verify") {
		renderer, err := rod.NewRenderer()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer renderer.Close()
		deps.Renderer = renderer
		if deps.Logger != nil {
			deps.Renderer = rod.NewLoggingRenderer(renderer, deps.Logger)
		}
	}

	return kongCtx.Run(deps)
}

// configure loads the config file and wires the services every command shares.
func (m *Main) configure(deps *Dependencies, cli *CLI, stderr io.Writer) error {
	deps.Root = cli.Root

	cfg, err := yaml.Load(deps.path(cli.Config))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if siteURL := m.getenv("ARTDIR_SITE_URL"); siteURL != "" {
		cfg.SiteURL = siteURL
	}
	deps.Config = cfg

	publicDir := cli.PublicDir
	if publicDir == "" {
		publicDir, err = toml.PublishDir(deps.path(toml.NetlifyFile), cfg.PublicDir)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", toml.NetlifyFile, err)
		}
	}
	deps.PublicDir = deps.path(publicDir)
	deps.DataDir = deps.path(cfg.DataDir)

	if cli.Verbose {
		deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	deps.Locations = fs.NewLocationService(filepath.Join(deps.DataDir, "locations"))
	deps.Pages = fs.NewPageStore(deps.PublicDir)
	deps.Images = arthttp.NewImageChecker(arthttp.WithTimeout(cfg.Images.Timeout))
	deps.Limiter = repair.NewDomainLimiter(cfg.Images.RatePerHost, 1)
	deps.Sitemaps = arthttp.NewSitemapService(nil)
	deps.SitemapWriter = etree.NewSitemapWriter(deps.PublicDir, cfg.SiteURL)
	deps.Extractor = trafilatura.NewExtractor(trafilatura.WithFallback(readability.NewExtractor()))

	if deps.Logger != nil {
		deps.Locations = artslog.NewLoggingLocationService(deps.Locations, deps.Logger)
		deps.Images = artslog.NewLoggingImageChecker(deps.Images, deps.Logger)
		deps.Sitemaps = artslog.NewLoggingSitemapService(deps.Sitemaps, deps.Logger)
	}
	return nil
}

func (m *Main) openDB(deps *Dependencies) error {
	path := deps.path(m.DBPath)
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		return fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	deps.Inventory = sqlite.NewImageInventory(m.DB)
	return nil
}

func (m *Main) wireImageKit(deps *Dependencies) error {
	key := m.getenv("IMAGEKIT_PRIVATE_KEY")
	if key == "" {
		return fmt.Errorf("IMAGEKIT_PRIVATE_KEY not set")
	}
	opts := []imagekit.Option{}
	if apiURL := m.getenv("IMAGEKIT_API_URL"); apiURL != "" {
		opts = append(opts, imagekit.WithBaseURL(apiURL))
	}
	if deps.Logger != nil {
		opts = append(opts, imagekit.WithLogger(deps.Logger))
	}
	deps.ImageKit = imagekit.NewClient(key, opts...)
	return nil
}

func (m *Main) wireDescriber(ctx context.Context, deps *Dependencies, stderr io.Writer) error {
	apiKey := m.getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	deps.Describer = gemini.NewDescriber(client)
	if deps.Logger != nil {
		deps.Describer = artslog.NewLoggingDescriber(deps.Describer, deps.Logger)
	}
	return nil
}

func (m *Main) getenv(key string) string {
	if m.Getenv == nil {
		return os.Getenv(key)
	}
	return m.Getenv(key)
}

func defaultDBPath(getenv func(string) string) string {
	if path := getenv("ARTDIR_DB"); path != "" {
		return path
	}
	return filepath.Join(".artdir", "images.db")
}

// PrintError writes err to w as "error: <msg>". Application errors show
// their user-facing message; anything else, such as flag parsing errors,
// is printed as is.
func PrintError(w io.Writer, err error) {
	msg := err.Error()
	var e *artdir.Error
	if errors.As(err, &e) {
		msg = artdir.ErrorMessage(err)
	}
	fmt.Fprintf(w, "error: %s\n", msg)
}

// printSkipped reports files that failed to load.
func printSkipped(deps *Dependencies, skipped []artdir.SkippedFile) {
	for _, s := range skipped {
		fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", s.Path, s.Err)
	}
}
