package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sightlinehq/sightline/internal/config"
	"github.com/sightlinehq/sightline/internal/profile"
)

func newClassifyCmd() *cobra.Command {
	var valueProp string

	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Show the profile classification for a business description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			classifier := profile.NewClassifier()
			classifier.Threshold = cfg.Threshold
			classifier.Weights = cfg.Weights

			prof := classifier.Classify(profile.Input{
				Description:      args[0],
				ValueProposition: valueProp,
			})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "category:   %s\n", prof.Category)
			fmt.Fprintf(out, "confidence: %.2f\n", prof.Confidence)
			fmt.Fprintf(out, "version:    %s\n", prof.Version)
			fmt.Fprintf(out, "threshold:  %.2f\n", prof.Threshold)

			if len(prof.Vocabulary) > 0 {
				terms := make([]string, 0, len(prof.Vocabulary))
				for t := range prof.Vocabulary {
					terms = append(terms, t)
				}
				sort.Strings(terms)
				fmt.Fprintln(out, "vocabulary:")
				for _, t := range terms {
					fmt.Fprintf(out, "  %-20s %.2f\n", t, prof.Vocabulary[t])
				}
			}

			if len(prof.SourceWeights) > 0 {
				names := make([]string, 0, len(prof.SourceWeights))
				for n := range prof.SourceWeights {
					names = append(names, n)
				}
				sort.Strings(names)
				fmt.Fprintln(out, "source weights:")
				for _, n := range names {
					fmt.Fprintf(out, "  %-20s %.1f\n", n, prof.SourceWeights[n])
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&valueProp, "value-prop", "", "business value proposition")
	return cmd
}
