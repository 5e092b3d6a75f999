package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fmlint/fmlint/pkg/console"
	"github.com/fmlint/fmlint/pkg/findings"
	"github.com/fmlint/fmlint/pkg/rules"
)

// watchDebounce batches rapid editor writes into one revalidation.
const watchDebounce = 300 * time.Millisecond

// RunWatch revalidates markdown documents as they change under the given
// paths. A report renders after every cycle; findings never fail a watch
// session, which exits 0 on Ctrl-C.
func RunWatch(opts ValidateOptions) error {
	paths := opts.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dirs := watchRoots(paths)
	if len(dirs) == 0 {
		return fmt.Errorf("no watchable directory among %s", strings.Join(paths, ", "))
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		if opts.Verbose {
			fmt.Println(console.FormatLocationMessage(dir))
		}
	}

	fmt.Println(console.FormatInfoMessage(fmt.Sprintf("Watching %s for changes, Ctrl-C to stop", strings.Join(paths, ", "))))
	watchCycle(opts, paths, nil)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	pending := make(map[string]struct{})
	var debounce <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			if !strings.HasSuffix(event.Name, ".md") {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending[event.Name] = struct{}{}
				debounce = time.After(watchDebounce)
			}

		case <-debounce:
			changed := make([]string, 0, len(pending))
			for file := range pending {
				changed = append(changed, file)
			}
			pending = make(map[string]struct{})
			debounce = nil
			sort.Strings(changed)

			fmt.Println(console.FormatProgressMessage(fmt.Sprintf("revalidating %d changed file(s)", len(changed))))
			watchCycle(opts, paths, changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("watch error: %v", err)))

		case <-sigChan:
			return nil
		}
	}
}

// watchCycle validates one batch. The full document set is always discovered
// and prescanned so duplicate ids and tenet references stay accurate, but
// when changed is non-nil only those files are revalidated and reported.
func watchCycle(opts ValidateOptions, paths []string, changed []string) {
	collector := findings.NewCollector()
	files := discoverFiles(paths, collector)
	contents, docs := readDocuments(files, collector)

	formatter := newFormatter(opts)
	validator := rules.New(rules.Options{
		ExpectedVersion: opts.ExpectedVersion,
		SchemaCheck:     opts.SchemaCheck,
	})
	validator.Prescan(docs)

	targets := docs
	if changed != nil {
		changedSet := make(map[string]bool, len(changed))
		for _, file := range changed {
			changedSet[file] = true
		}
		targets = nil
		for _, doc := range docs {
			if changedSet[doc.Path] {
				targets = append(targets, doc)
			}
		}
	}

	results := validateDocuments(validator, targets, formatter, opts.Parallel)
	for _, res := range results {
		collector.Merge(res.collector)
	}

	all := collector.All()
	if report := formatter.Render(all, contents); report != "" {
		fmt.Print(report)
		return
	}
	if !opts.Quiet {
		fmt.Println(console.FormatSuccessMessage(fmt.Sprintf("all files valid (%d checked)", len(targets))))
	}
}

// watchRoots maps path arguments to watchable directories: a directory
// argument registers itself and every nested subdirectory, a file argument
// registers its parent. fsnotify watches are not recursive on their own.
func watchRoots(paths []string) []string {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			add(filepath.Dir(path))
			continue
		}
		_ = filepath.Walk(path, func(entry string, entryInfo os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if entryInfo.IsDir() {
				if name := entryInfo.Name(); strings.HasPrefix(name, ".") && entry != path {
					return filepath.SkipDir
				}
				add(entry)
			}
			return nil
		})
	}
	return dirs
}
