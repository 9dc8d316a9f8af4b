package shell

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// maxReadSize caps file reads at 10MB.
const maxReadSize = 10 * 1024 * 1024

// maxFindResults caps find matches in a single response.
const maxFindResults = 100

// fileOperations routes the file_operations sub-actions. Every outcome,
// including refused paths, is reported in-band.
func (e *executor) fileOperations(params map[string]any) (any, error) {
	operation, _ := params["operation"].(string)
	path, _ := params["path"].(string)
	if path == "" {
		return map[string]any{"error": "no path provided"}, nil
	}
	switch operation {
	case "list":
		return listDirectory(path)
	case "read":
		return readFile(path, params)
	case "info":
		return fileInfo(path)
	case "find":
		return findFiles(path, params)
	default:
		return map[string]any{"error": fmt.Sprintf("unknown file operation: %s", operation)}, nil
	}
}

func listDirectory(path string) (any, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("failed to list %s: %v", path, err)}, nil
	}
	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		item := map[string]any{
			"name": entry.Name(),
			"type": entryType(entry.IsDir()),
		}
		if info, err := entry.Info(); err == nil {
			if !entry.IsDir() {
				item["size"] = info.Size()
			}
			item["modified"] = info.ModTime().UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	// Directories first, then lexical.
	sort.Slice(items, func(i, j int) bool {
		ti, tj := items[i]["type"].(string), items[j]["type"].(string)
		if ti != tj {
			return ti == "directory"
		}
		return items[i]["name"].(string) < items[j]["name"].(string)
	})
	return map[string]any{
		"path":       path,
		"item_count": len(items),
		"items":      items,
	}, nil
}

func readFile(path string, params map[string]any) (any, error) {
	info, err := os.Stat(path)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("file does not exist: %s", path)}, nil
	}
	if info.IsDir() {
		return map[string]any{"error": fmt.Sprintf("path is not a file: %s", path)}, nil
	}
	if info.Size() > maxReadSize {
		return map[string]any{"error": "file too large (>10MB)"}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("failed to read file: %v", err)}, nil
	}
	content := string(data)
	truncated := false
	if lines, ok := asFloat(params["lines"]); ok && lines > 0 {
		split := strings.SplitAfter(content, "\n")
		if int(lines) < len(split) {
			content = strings.Join(split[:int(lines)], "")
			truncated = true
		}
	}
	return map[string]any{
		"path":      path,
		"size":      info.Size(),
		"content":   content,
		"truncated": truncated,
	}, nil
}

func fileInfo(path string) (any, error) {
	info, err := os.Stat(path)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("path does not exist: %s", path)}, nil
	}
	return map[string]any{
		"path":        path,
		"name":        info.Name(),
		"type":        entryType(info.IsDir()),
		"size":        info.Size(),
		"modified":    info.ModTime().UTC().Format(time.RFC3339),
		"permissions": info.Mode().Perm().String(),
	}, nil
}

func findFiles(path string, params map[string]any) (any, error) {
	pattern, _ := params["pattern"].(string)
	if pattern == "" {
		pattern = "*"
	}
	recursive := true
	if r, ok := params["recursive"].(bool); ok {
		recursive = r
	}

	var matches []string
	if recursive {
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip unreadable entries
			}
			if ok, _ := filepath.Match(pattern, d.Name()); ok {
				matches = append(matches, p)
			}
			if len(matches) >= maxFindResults {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			return map[string]any{"error": fmt.Sprintf("find failed: %v", err)}, nil
		}
	} else {
		found, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return map[string]any{"error": fmt.Sprintf("find failed: %v", err)}, nil
		}
		matches = found
		if len(matches) > maxFindResults {
			matches = matches[:maxFindResults]
		}
	}

	return map[string]any{
		"base_path":   path,
		"pattern":     pattern,
		"recursive":   recursive,
		"match_count": len(matches),
		"matches":     matches,
	}, nil
}

func entryType(isDir bool) string {
	if isDir {
		return "directory"
	}
	return "file"
}
