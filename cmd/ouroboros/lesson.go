package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taigrr/ouroboros/pkg/content"
)

func newLessonCmd(g *globalFlags) *cobra.Command {
	var (
		root string
		url  string
	)
	cmd := &cobra.Command{
		Use:   "lesson <folder> <number>",
		Short: "Resolve and print a lesson document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("lesson number %q: %w", args[1], err)
			}
			return runLesson(cmd.Context(), g, root, url, args[0], n)
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "Content directory (default from config)")
	cmd.Flags().StringVar(&url, "url", "", "Content base URL (default from config)")
	return cmd
}

func runLesson(ctx context.Context, g *globalFlags, root, url, folder string, n int) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger, logCloser, err := g.newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	if root == "" && url == "" {
		root, url = cfg.ContentRoot, cfg.ContentURL
	}

	var resolver content.Resolver
	switch {
	case url != "":
		resolver = &content.HTTPResolver{BaseURL: url}
	default:
		if root == "" {
			root = "."
		}
		fsr, err := content.OpenDir(root, logger)
		if err != nil {
			return err
		}
		defer fsr.Close()
		resolver = fsr
	}

	doc, err := resolver.Resolve(ctx, folder, n)
	if err != nil {
		// Load failures are shown inline, not as a command failure.
		fmt.Println(content.ErrorPanel(fmt.Sprintf("%s/lesson%d", folder, n), err))
		return nil
	}
	fmt.Printf("%s (%s)\n\n", doc.Path, doc.Kind)
	os.Stdout.Write(doc.Body)
	fmt.Println()
	return nil
}
