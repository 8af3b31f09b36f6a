package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"SuiAI-SDK/sdk/go/suiai"

	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	dimColor  = color.New(color.Faint)
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printField(name string, value any) {
	dimColor.Printf("%-16s", name+":")
	fmt.Println(value)
}

// printError 输出错误码及附带的元数据，便于排查提交结果未知等情况。
func printError(err error) {
	errColor.Fprintf(os.Stderr, "Error [%s]: ", suiai.CodeOf(err))
	fmt.Fprintln(os.Stderr, err)
	meta := suiai.MetadataOf(err)
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		dimColor.Fprintf(os.Stderr, "  %s: ", k)
		fmt.Fprintln(os.Stderr, meta[k])
	}
	if suiai.IsRetryable(err) {
		warnColor.Fprintln(os.Stderr, "  the call may be retried; check the digest before resubmitting")
	}
}
