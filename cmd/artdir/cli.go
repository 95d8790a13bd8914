package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/imagekit"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	// Logger is set when --verbose is given.
	Logger *slog.Logger

	Config *artdir.Config

	// Root is the project directory; DataDir and PublicDir are resolved
	// against it.
	Root      string
	DataDir   string
	PublicDir string

	Locations     artdir.LocationService
	Pages         artdir.PageStore
	Inventory     artdir.ImageInventory
	Images        artdir.ImageChecker
	Limiter       artdir.DomainLimiter
	Sitemaps      artdir.SitemapService
	SitemapWriter artdir.SitemapWriter
	Extractor     artdir.Extractor
	Describer     artdir.Describer
	Renderer      artdir.Renderer
	ImageKit      *imagekit.Client

	Now func() time.Time
}

// path resolves p against the project root unless it is absolute.
func (d *Dependencies) path(p string) string {
	if filepath.IsAbs(p) || d.Root == "" {
		return p
	}
	return filepath.Join(d.Root, p)
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Root      string `default:"." help:"Project root directory"`
	Config    string `default:"artdir.yaml" help:"Config file, relative to the root"`
	PublicDir string `name:"public-dir" help:"Built site directory (default: netlify.toml publish dir, then config)"`
	Verbose   bool   `short:"v" help:"Log every service call to stderr"`

	Images      ImagesCmd      `cmd:"" help:"Check and repair appraiser images"`
	ImageKit    ImageKitCmd    `cmd:"" name:"imagekit" help:"ImageKit media library tools"`
	Complete    CompleteCmd    `cmd:"" help:"Fill missing appraiser fields with defaults"`
	Standardize StandardizeCmd `cmd:"" help:"Write normalized location files and the city index"`
	Index       IndexCmd       `cmd:"" help:"Apply indexing rules to location pages"`
	Enrich      EnrichCmd      `cmd:"" help:"Write titles, descriptions, and structured data into location pages"`
	Audit       AuditCmd       `cmd:"" help:"Report pages missing SEO elements"`
	Sitemap     SitemapCmd     `cmd:"" help:"Generate or check the sitemap"`
	Verify      VerifyCmd      `cmd:"" help:"Render deployed pages in a browser and audit them"`
	ShowConfig  ConfigCmd      `cmd:"" name:"config" help:"Print the effective configuration"`
}

// ImagesCmd groups the image subcommands.
type ImagesCmd struct {
	Check ImagesCheckCmd `cmd:"" help:"Check every appraiser image and record the results"`
	Fix   ImagesFixCmd   `cmd:"" help:"Replace broken appraiser images"`
}

// ImagesCheckCmd is the "images check" subcommand.
type ImagesCheckCmd struct {
	Slugs   []string      `help:"Restrict to these location slugs"`
	MaxAge  time.Duration `name:"max-age" help:"Reuse recorded results younger than this (default from config)"`
	Refresh bool          `help:"Ignore recorded results"`
}

// ImagesFixCmd is the "images fix" subcommand.
type ImagesFixCmd struct {
	Slugs   []string      `help:"Restrict to these location slugs"`
	DryRun  bool          `name:"dry-run" help:"Report replacements without writing"`
	MaxAge  time.Duration `name:"max-age" help:"Reuse recorded results younger than this (default from config)"`
	Refresh bool          `help:"Ignore recorded results"`
	Report  string        `default:"image-report.json" help:"Report file, relative to the root"`
}

// ImageKitCmd groups the ImageKit subcommands.
type ImageKitCmd struct {
	Sync ImageKitSyncCmd `cmd:"" help:"Record every library image in the inventory"`
	Auth ImageKitAuthCmd `cmd:"" help:"Print client upload authentication parameters"`
}

// ImageKitSyncCmd is the "imagekit sync" subcommand.
type ImageKitSyncCmd struct {
	Folder string `default:"/" help:"Library folder to list"`
}

// ImageKitAuthCmd is the "imagekit auth" subcommand.
type ImageKitAuthCmd struct {
	Token  string `help:"Upload token (default: random UUID)"`
	Expire int64  `help:"Expiry as Unix seconds (default: 30 minutes from now)"`
}

// CompleteCmd is the "complete" subcommand.
type CompleteCmd struct {
	Slugs  []string `help:"Restrict to these location slugs"`
	DryRun bool     `name:"dry-run" help:"Report without writing"`
}

// StandardizeCmd is the "standardize" subcommand.
type StandardizeCmd struct {
	DryRun bool `name:"dry-run" help:"Report without writing"`
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct {
	Slugs  []string `help:"Restrict to these location slugs"`
	DryRun bool     `name:"dry-run" help:"Report decisions without writing"`
}

// EnrichCmd is the "enrich" subcommand.
type EnrichCmd struct {
	Slugs  []string `help:"Restrict to these location slugs"`
	DryRun bool     `name:"dry-run" help:"Report without writing"`
	AI     bool     `name:"ai" help:"Write descriptions with Gemini (needs GEMINI_API_KEY)"`
}

// AuditCmd is the "audit" subcommand.
type AuditCmd struct {
	Slugs []string `help:"Restrict to these location slugs"`
	All   bool     `help:"Audit every page, not only location pages"`
}

// SitemapCmd groups the sitemap subcommands. Generation is the default.
type SitemapCmd struct {
	Generate SitemapGenerateCmd `cmd:"" default:"1" help:"Write sitemap.xml, routes.txt, and robots.txt"`
	Check    SitemapCheckCmd    `cmd:"" help:"Compare local routes with a deployed sitemap"`
}

// SitemapGenerateCmd is the "sitemap generate" subcommand.
type SitemapGenerateCmd struct{}

// SitemapCheckCmd is the "sitemap check" subcommand.
type SitemapCheckCmd struct {
	BaseURL string `arg:"" optional:"" name:"base-url" help:"Deployed site (default: configured site URL)"`
}

// VerifyCmd is the "verify" subcommand.
type VerifyCmd struct {
	BaseURL     string   `arg:"" optional:"" name:"base-url" help:"Deployed or preview site (default: configured site URL)"`
	Slugs       []string `help:"Restrict to these location slugs"`
	Limit       int      `help:"Render at most this many location pages (0 means all)"`
	Concurrency int      `short:"c" default:"4" help:"Pages rendered at once"`
}

// ConfigCmd is the "config" subcommand.
type ConfigCmd struct{}
