// Command arccat locates resources in archive-backed storages and prints them.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/ZaparooProject/go-arcres/archive"
	"github.com/ZaparooProject/go-arcres/resource"
	"github.com/ZaparooProject/go-arcres/zipres"
)

const appVersion = "0.1.0"

const (
	envStorages = "ARCCAT_STORAGES"
	envLogLevel = "ARCCAT_LOG_LEVEL"
	envFormats  = "ARCCAT_FORMATS"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type config struct {
	storages        stringList
	group           string
	list            string
	verify          string
	offset          int64
	length          int64
	jsonOutput      bool
	caseInsensitive bool
	formats         string
	logLevel        string
	envFile         string
	version         bool
	names           []string
}

// app carries what a run needs. fsys is the host filesystem in production.
type app struct {
	cfg    *config
	fsys   afero.Fs
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

func main() {
	os.Exit(run(os.Args[1:], afero.NewOsFs(), os.Stdout, os.Stderr))
}

func run(args []string, fsys afero.Fs, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return exitUsage
	}

	if cfg.version {
		_, _ = fmt.Fprintf(stdout, "arccat version %s\n", appVersion)
		return exitOK
	}

	if err := applyEnv(cfg, fsys); err != nil {
		printError(stderr, "loading environment: %v", err)
		return exitUsage
	}

	logger, err := newLogger(cfg.logLevel, stderr)
	if err != nil {
		printError(stderr, "%v", err)
		return exitUsage
	}

	a := &app{cfg: cfg, fsys: fsys, stdout: stdout, stderr: stderr, logger: logger}

	switch {
	case cfg.list != "":
		return a.listArchive(cfg.list)
	case cfg.verify != "":
		return a.verifyArchive(cfg.verify)
	case len(cfg.names) == 0:
		printError(stderr, "at least one resource name is required")
		return exitUsage
	default:
		return a.cat()
	}
}

func parseArgs(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}
	fs := flag.NewFlagSet("arccat", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Var(&cfg.storages, "s", "storage to search (repeatable; archive path or directory)")
	fs.StringVar(&cfg.group, "group", resource.DefaultGroup, "storage group to search")
	fs.StringVar(&cfg.list, "list", "", "list the entries of an archive and exit")
	fs.StringVar(&cfg.verify, "verify", "", "decompress every entry of an archive and exit")
	fs.Int64Var(&cfg.offset, "offset", 0, "start reading at this byte offset")
	fs.Int64Var(&cfg.length, "length", -1, "read at most this many bytes (-1 for all)")
	fs.BoolVar(&cfg.jsonOutput, "json", false, "print resolved locations as JSON instead of contents")
	fs.BoolVar(&cfg.caseInsensitive, "case-insensitive", false, "match entry names ignoring case")
	fs.StringVar(&cfg.formats, "formats", "", "archive formats to serve, comma separated (default zip)")
	fs.StringVar(&cfg.logLevel, "log-level", "", "log level: debug, info, warn or error (default warn)")
	fs.StringVar(&cfg.envFile, "env", "", "load settings from this .env file")
	fs.BoolVar(&cfg.version, "version", false, "print version and exit")

	fs.Usage = func() {
		out := fs.Output()
		_, _ = fmt.Fprintf(out, "Usage: arccat [options] name...\n\n")
		_, _ = fmt.Fprintf(out, "Locates resources in archive-backed storages and writes them to stdout.\n\n")
		_, _ = fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(out, "\nEnvironment:\n")
		_, _ = fmt.Fprintf(out, "  %s  comma separated storages, used when no -s is given\n", envStorages)
		_, _ = fmt.Fprintf(out, "  %s  log level, used when -log-level is not given\n", envLogLevel)
		_, _ = fmt.Fprintf(out, "  %s    archive formats, used when -formats is not given\n", envFormats)
		_, _ = fmt.Fprintf(out, "\nExamples:\n")
		_, _ = fmt.Fprintf(out, "  arccat -s data.zip level1.json\n")
		_, _ = fmt.Fprintf(out, "  arccat -s mods.7z -s data.zip -formats zip,7z -json level1.json\n")
		_, _ = fmt.Fprintf(out, "  arccat data.zip/levels/level1.json\n")
		_, _ = fmt.Fprintf(out, "  arccat -list data.zip\n")
		_, _ = fmt.Fprintf(out, "  arccat -verify data.zip/levels/\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err //nolint:wrapcheck // flag already reported the error
	}
	cfg.names = fs.Args()
	return cfg, nil
}

// applyEnv fills settings not given on the command line from the process
// environment and, when -env is set, from a .env file. The process
// environment wins over the file.
func applyEnv(cfg *config, fsys afero.Fs) error {
	fileEnv := map[string]string{}
	if cfg.envFile != "" {
		f, err := fsys.Open(cfg.envFile)
		if err != nil {
			return fmt.Errorf("open env file: %w", err)
		}
		defer func() { _ = f.Close() }()

		fileEnv, err = godotenv.Parse(f)
		if err != nil {
			return fmt.Errorf("parse env file: %w", err)
		}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return fileEnv[key]
	}

	if len(cfg.storages) == 0 {
		for _, s := range strings.Split(lookup(envStorages), ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.storages = append(cfg.storages, s)
			}
		}
	}
	if cfg.logLevel == "" {
		cfg.logLevel = lookup(envLogLevel)
	}
	if cfg.formats == "" {
		cfg.formats = lookup(envFormats)
	}
	return nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	lvl := slog.LevelWarn
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q", level)
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func parseFormats(list string) ([]archive.Format, error) {
	if strings.TrimSpace(list) == "" {
		return []archive.Format{archive.FormatZIP}, nil
	}

	var formats []archive.Format
	for _, name := range strings.Split(list, ",") {
		format, err := archive.ParseFormat(name)
		if err != nil {
			return nil, fmt.Errorf("invalid format: %w", err)
		}
		formats = append(formats, format)
	}
	return formats, nil
}

func (a *app) backendOptions() ([]zipres.Option, error) {
	formats, err := parseFormats(a.cfg.formats)
	if err != nil {
		return nil, err
	}
	return []zipres.Option{
		zipres.WithFilesystem(a.fsys),
		zipres.WithLogger(a.logger),
		zipres.WithFormats(formats...),
		zipres.WithCaseInsensitive(a.cfg.caseInsensitive),
	}, nil
}

// resolved is the JSON form of a located resource.
type resolved struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Size     int64  `json:"size"`
}

func (a *app) cat() int {
	opts, err := a.backendOptions()
	if err != nil {
		printError(a.stderr, "%v", err)
		return exitUsage
	}

	m, err := resource.NewManager(resource.WithLogger(a.logger), resource.WithFilesystem(a.fsys))
	if err != nil {
		printError(a.stderr, "%v", err)
		return exitFailure
	}
	b, err := zipres.Register(m, opts...)
	if err != nil {
		printError(a.stderr, "%v", err)
		return exitFailure
	}
	for _, storage := range a.cfg.storages {
		m.AddStorage(a.cfg.group, storage, false)
	}

	status := exitOK
	var results []resolved
	for _, name := range a.cfg.names {
		location, err := a.locate(m, b, name)
		if err != nil {
			printError(a.stderr, "%s: %v", name, err)
			status = exitFailure
			continue
		}

		if a.cfg.jsonOutput {
			r, err := a.stat(m, name, location)
			if err != nil {
				printError(a.stderr, "%s: %v", name, err)
				status = exitFailure
				continue
			}
			results = append(results, r)
			continue
		}

		if err := a.copyResource(m, location); err != nil {
			printError(a.stderr, "%s: %v", name, err)
			status = exitFailure
		}
	}

	if a.cfg.jsonOutput {
		if err := a.writeJSON(results); err != nil {
			printError(a.stderr, "encoding JSON: %v", err)
			return exitFailure
		}
	}
	return status
}

// locate resolves name to a location. A name that reaches into an existing
// archive, such as data.zip/level1.json, is looked up in that archive directly;
// any other name is searched for in the storage group.
func (a *app) locate(m *resource.Manager, b *zipres.Backend, name string) (string, error) {
	if archive.IsArchivePath(name) {
		p, err := archive.ParsePath(a.fsys, name)
		if err != nil {
			return "", err //nolint:wrapcheck // already names the archive
		}
		if p != nil && p.InternalPath != "" {
			location, err := b.LocateEntry(p.ArchivePath, p.InternalPath)
			if err != nil {
				return "", err //nolint:wrapcheck // already names the archive
			}
			return resource.JoinLocation(b.Tag(), location), nil
		}
	}

	location, ok := m.Locate(a.cfg.group, name)
	if !ok {
		return "", fmt.Errorf("not found in group %q", a.cfg.group)
	}
	return location, nil
}

// splitArchivePath splits a path such as data.zip/levels/ into the archive and
// the entry prefix below it. Paths that do not reach into an existing archive
// are returned whole.
func (a *app) splitArchivePath(path string) (archivePath, prefix string, err error) {
	p, err := archive.ParsePath(a.fsys, path)
	if err != nil {
		return "", "", err //nolint:wrapcheck // already names the archive
	}
	if p == nil {
		return path, "", nil
	}
	return p.ArchivePath, p.InternalPath, nil
}

func (a *app) stat(m *resource.Manager, name, location string) (resolved, error) {
	res, err := m.Open(location, false)
	if err != nil {
		return resolved{}, fmt.Errorf("open resource: %w", err)
	}
	defer func() { _ = res.Close() }()

	size, err := res.Size()
	if err != nil {
		return resolved{}, fmt.Errorf("resource size: %w", err)
	}
	return resolved{Name: name, Location: location, Size: size}, nil
}

func (a *app) copyResource(m *resource.Manager, location string) error {
	res, err := m.Open(location, false)
	if err != nil {
		return fmt.Errorf("open resource: %w", err)
	}
	defer func() { _ = res.Close() }()

	if a.cfg.offset != 0 {
		if _, err := res.Seek(a.cfg.offset, io.SeekStart); err != nil {
			return fmt.Errorf("seek to %d: %w", a.cfg.offset, err)
		}
	}

	var src io.Reader = res
	if a.cfg.length >= 0 {
		src = io.LimitReader(res, a.cfg.length)
	}
	if _, err := io.Copy(a.stdout, src); err != nil {
		return fmt.Errorf("copy resource: %w", err)
	}
	return nil
}

// entryInfo is the JSON form of an archive entry.
type entryInfo struct {
	Name           string `json:"name"`
	Index          int    `json:"index"`
	Size           int64  `json:"size"`
	CompressedSize int64  `json:"compressed_size"`
	CRC32          uint32 `json:"crc32"`
	Method         uint16 `json:"method"`
	Dir            bool   `json:"dir,omitempty"`
}

func (a *app) listArchive(path string) int {
	arcPath, prefix, err := a.splitArchivePath(path)
	if err != nil {
		printError(a.stderr, "%v", err)
		return exitFailure
	}

	arc, err := archive.Open(a.fsys, arcPath)
	if err != nil {
		printError(a.stderr, "%v", err)
		return exitFailure
	}
	defer func() { _ = arc.Close() }()

	entries := filterEntries(arc.Entries(), prefix)

	if a.cfg.jsonOutput {
		infos := make([]entryInfo, len(entries))
		for i, e := range entries {
			infos[i] = entryInfo{
				Name: e.Name, Index: e.Index, Size: e.Size, CompressedSize: e.CompressedSize,
				CRC32: e.CRC32, Method: e.Method, Dir: e.IsDir,
			}
		}
		if err := a.writeJSON(infos); err != nil {
			printError(a.stderr, "encoding JSON: %v", err)
			return exitFailure
		}
		return exitOK
	}

	header := color.New(color.FgCyan, color.Bold)
	_, _ = header.Fprintf(a.stdout, "%s (%s, %d entries)\n", path, arc.Format(), len(entries))
	for _, e := range entries {
		name := e.Name
		if e.IsDir {
			name = color.BlueString(name)
		}
		_, _ = fmt.Fprintf(a.stdout, "%5d %12d %s\n", e.Index, e.Size, name)
	}
	return exitOK
}

func (a *app) verifyArchive(path string) int {
	opts, err := a.backendOptions()
	if err != nil {
		printError(a.stderr, "%v", err)
		return exitUsage
	}
	// Every entry of the named archive is checked, whatever its format.
	opts = append(opts, zipres.WithFormats(archive.FormatZIP, archive.Format7z, archive.FormatRAR))
	b := zipres.New(opts...)

	arcPath, prefix, err := a.splitArchivePath(path)
	if err != nil {
		printError(a.stderr, "%v", err)
		return exitFailure
	}

	arc, err := archive.Open(a.fsys, arcPath)
	if err != nil {
		printError(a.stderr, "%v", err)
		return exitFailure
	}
	entries := filterEntries(arc.Entries(), prefix)
	_ = arc.Close()

	failures := make([]error, len(entries))
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i, e := range entries {
		if e.IsDir {
			continue
		}
		g.Go(func() error {
			view, err := b.OpenView(zipres.FormatLocation(arcPath, e.Index))
			if err != nil {
				failures[i] = err
				return nil
			}
			return view.Close()
		})
	}
	if err := g.Wait(); err != nil {
		printError(a.stderr, "%v", err)
		return exitFailure
	}

	ok, failed := 0, 0
	for i, e := range entries {
		switch {
		case e.IsDir:
		case failures[i] != nil:
			failed++
			_, _ = fmt.Fprintf(a.stdout, "%s %s: %v\n", color.RedString("FAIL"), e.Name, failures[i])
		default:
			ok++
			_, _ = fmt.Fprintf(a.stdout, "%s %s\n", color.GreenString("ok  "), e.Name)
		}
	}
	_, _ = fmt.Fprintf(a.stdout, "%d ok, %d failed\n", ok, failed)

	if failed > 0 {
		return exitFailure
	}
	return exitOK
}

// filterEntries keeps the entries whose names start with prefix.
func filterEntries(entries []archive.Entry, prefix string) []archive.Entry {
	if prefix == "" {
		return entries
	}
	var kept []archive.Entry
	for _, e := range entries {
		if strings.HasPrefix(e.Name, prefix) {
			kept = append(kept, e)
		}
	}
	return kept
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v) //nolint:wrapcheck // caller reports the error
}

func printError(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", color.RedString("Error:"), fmt.Sprintf(format, args...))
}
