// Command recordkit is the CLI for working with health record item XML:
// inspecting and pretty-printing item files, managing a local blob store
// and item cache, and watching a record change stream.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/evergreen-health/recordkit/core/blob"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/core/xml"
	"github.com/evergreen-health/recordkit/internal/cache"
	"github.com/evergreen-health/recordkit/internal/logging"
	"github.com/evergreen-health/recordkit/internal/notify"
	"github.com/evergreen-health/recordkit/internal/query"

	// Register the built-in item types so deserialization dispatches.
	_ "github.com/evergreen-health/recordkit/core/itemtypes"
)

const version = "0.1.0"

// CLI defines the command-line interface for recordkit.
var CLI struct {
	// Global flags
	CacheDir  string `name:"cache-dir" help:"Cache database path" default:"recordkit.db" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info" enum:"debug,info,warn,error"`
	LogFormat string `name:"log-format" help:"Log format (json, text)" default:"text" enum:"json,text"`

	// Command groups (noun-first organization)
	Thing   ThingGroup `cmd:"" help:"Item XML operations (parse, format, roundtrip)"`
	Blob    BlobGroup  `cmd:"" help:"Local blob store operations"`
	Cache   CacheGroup `cmd:"" help:"Local item cache operations"`
	Watch   WatchCmd   `cmd:"" help:"Watch a record change stream"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// ThingGroup contains item XML operations.
type ThingGroup struct {
	Parse     ThingParseCmd     `cmd:"" help:"Parse an item file and print a summary"`
	Format    ThingFormatCmd    `cmd:"" help:"Pretty-print an item file"`
	Roundtrip ThingRoundtripCmd `cmd:"" help:"Parse and re-serialize an item file"`
}

// BlobGroup contains blob store operations.
type BlobGroup struct {
	Add BlobAddCmd `cmd:"" help:"Add a file to the blob store"`
	Get BlobGetCmd `cmd:"" help:"Fetch a blob by hash"`
}

// CacheGroup contains item cache operations.
type CacheGroup struct {
	Put    CachePutCmd    `cmd:"" help:"Store an item file in the cache"`
	Search CacheSearchCmd `cmd:"" help:"Search cached items with a filter query"`
}

// ThingParseCmd parses an item file and prints its metadata.
type ThingParseCmd struct {
	Path string `arg:"" help:"Path to item XML file" type:"existingfile"`
}

func (c *ThingParseCmd) Run() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return err
	}
	item, err := thing.Deserialize(data)
	if err != nil {
		return err
	}
	base := item.Item()
	fmt.Printf("type:      %s", base.TypeID)
	if base.TypeName != "" {
		fmt.Printf(" (%s)", base.TypeName)
	}
	fmt.Println()
	if base.Key != nil {
		fmt.Printf("id:        %s\n", base.Key.ID)
		if base.Key.VersionStamp != uuid.Nil {
			fmt.Printf("version:   %s\n", base.Key.VersionStamp)
		}
	}
	fmt.Printf("state:     %s\n", base.State)
	if base.Flags != 0 {
		fmt.Printf("flags:     %s\n", base.Flags)
	}
	if !base.EffectiveDate.IsZero() {
		fmt.Printf("effective: %s\n", base.EffectiveDate.Format("2006-01-02 15:04:05"))
	}
	if len(base.Tags) > 0 {
		fmt.Printf("tags:      %s\n", strings.Join(base.Tags, ", "))
	}
	for _, b := range base.Blobs.Blobs {
		fmt.Printf("blob:      %s\n", b)
	}
	if base.IsSigned() {
		fmt.Printf("signed:    %d signature(s)\n", len(base.Signatures))
	}
	if s, ok := item.(fmt.Stringer); ok {
		fmt.Printf("summary:   %s\n", s)
	}
	return nil
}

// ThingFormatCmd pretty-prints an item file.
type ThingFormatCmd struct {
	Path   string `arg:"" help:"Path to item XML file" type:"existingfile"`
	Indent string `help:"Indent string" default:"  "`
}

func (c *ThingFormatCmd) Run() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return err
	}
	formatted, err := xml.Format(data, c.Indent)
	if err != nil {
		return err
	}
	os.Stdout.Write(formatted)
	return nil
}

// ThingRoundtripCmd parses an item and prints its re-serialized form,
// proving the file survives a parse/write cycle.
type ThingRoundtripCmd struct {
	Path string `arg:"" help:"Path to item XML file" type:"existingfile"`
}

func (c *ThingRoundtripCmd) Run() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return err
	}
	item, err := thing.Deserialize(data)
	if err != nil {
		return err
	}
	out, err := thing.Serialize(item)
	if err != nil {
		return err
	}
	os.Stdout.Write(out)
	fmt.Println()
	return nil
}

// BlobAddCmd adds a file to the blob store.
type BlobAddCmd struct {
	Store    string `help:"Blob store root directory" default:"blobstore" type:"path"`
	Path     string `arg:"" help:"File to store" type:"existingfile"`
	Compress bool   `help:"Compress stored blobs with xz"`
}

func (c *BlobAddCmd) Run() error {
	var (
		store *blob.Store
		err   error
	)
	if c.Compress {
		store, err = blob.NewCompressedStore(c.Store)
	} else {
		store, err = blob.NewStore(c.Store)
	}
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return err
	}
	ref, err := store.Put(data)
	if err != nil {
		return err
	}
	fmt.Printf("sha256: %s\nblake3: %s\nsize:   %d\n", ref.SHA256, ref.BLAKE3, ref.Size)
	return nil
}

// BlobGetCmd fetches a blob by SHA-256 hash.
type BlobGetCmd struct {
	Store  string `help:"Blob store root directory" default:"blobstore" type:"path"`
	Hash   string `arg:"" help:"SHA-256 hash of the blob"`
	Output string `short:"o" help:"Output file (default stdout)" type:"path"`
}

func (c *BlobGetCmd) Run() error {
	store, err := blob.NewStore(c.Store)
	if err != nil {
		return err
	}
	data, err := store.Get(c.Hash)
	if err != nil {
		return err
	}
	if c.Output == "" {
		os.Stdout.Write(data)
		return nil
	}
	return os.WriteFile(c.Output, data, 0o644)
}

// CachePutCmd stores an item file in the local cache.
type CachePutCmd struct {
	Path string `arg:"" help:"Path to item XML file" type:"existingfile"`
}

func (c *CachePutCmd) Run() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return err
	}
	item, err := thing.Parse(data)
	if err != nil {
		return err
	}
	db, err := cache.Open(CLI.CacheDir)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Put(context.Background(), item); err != nil {
		return err
	}
	fmt.Printf("cached %s\n", item.Key.ID)
	return nil
}

// CacheSearchCmd searches the local cache.
type CacheSearchCmd struct {
	Query string `arg:"" optional:"" help:"Filter query, e.g. 'type:weight and tag:\"fitness\"'"`
}

func (c *CacheSearchCmd) Run() error {
	filter, err := query.Compile(c.Query)
	if err != nil {
		return err
	}
	db, err := cache.Open(CLI.CacheDir)
	if err != nil {
		return err
	}
	defer db.Close()
	items, err := db.Search(context.Background(), filter)
	if err != nil {
		return err
	}
	for _, item := range items {
		effective := ""
		if !item.EffectiveDate.IsZero() {
			effective = item.EffectiveDate.Format("2006-01-02")
		}
		fmt.Printf("%s\t%-10s\t%s\n", item.Key.ID, effective, item)
	}
	fmt.Fprintf(os.Stderr, "%d item(s)\n", len(items))
	return nil
}

// WatchCmd streams record change notifications.
type WatchCmd struct {
	URL     string   `arg:"" help:"Notification endpoint URL (ws:// or wss://)"`
	Records []string `arg:"" help:"Record IDs to watch"`
}

func (c *WatchCmd) Run() error {
	recordIDs := make([]uuid.UUID, 0, len(c.Records))
	for _, raw := range c.Records {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid record ID %q: %w", raw, err)
		}
		recordIDs = append(recordIDs, id)
	}
	ctx := context.Background()
	return notify.Watch(ctx, c.URL, recordIDs, func(e notify.Event) {
		fmt.Printf("%s\t%s\t%s\n", e.Type, e.RecordID, e.ItemID)
	})
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("recordkit %s (%s sqlite driver)\n", version, cache.DriverType())
	return nil
}

func initLogging() {
	level := map[string]logging.Level{
		"debug": logging.LevelDebug,
		"info":  logging.LevelInfo,
		"warn":  logging.LevelWarn,
		"error": logging.LevelError,
	}[CLI.LogLevel]
	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("recordkit"),
		kong.Description("Health record item toolkit"),
		kong.UsageOnError(),
	)
	initLogging()
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "recordkit: %v\n", err)
		os.Exit(1)
	}
}
