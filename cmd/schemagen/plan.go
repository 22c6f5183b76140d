package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schemaarchitect/internal/util/jsonutil"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Fetch the design and print the schema plan as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mustValidate()
		ctx, cancel := signalContext()
		defer cancel()

		r, cleanup, err := newRunner(ctx)
		if err != nil {
			logger.Fatal("configuration error", zap.Error(err))
		}
		defer cleanup()

		design, err := r.Fetch(ctx)
		if err != nil {
			logger.Error("fetch failed", zap.Error(err))
			return nil
		}
		plan, err := r.Plan(ctx, design)
		if err != nil {
			logger.Error("planning failed", zap.Error(err))
			return nil
		}
		out, err := jsonutil.MarshalNoEscapeIndent(plan, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}
