package cmd

import (
	"errors"
	"fmt"

	"github.com/shandysiswandi/registra/internal/app"
	"github.com/spf13/cobra"
)

var errNIKSecretRequired = errors.New("hash.nik.secret is required")

var hashNIKCmd = &cobra.Command{
	Use:   "hash-nik <nik>",
	Short: "Print the stored hash of a NIK",
	Long: `Print the keyed hash that registra stores for a NIK.

Useful to look a user up in the database without storing the NIK in clear.

Examples:
  registra hash-nik 3201234567890123`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		defer cfg.Close() //nolint:errcheck // read-only use

		h, ok := app.NewNIKHash(cfg)
		if !ok {
			return errNIKSecretRequired
		}

		sum, err := h.Hash(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(sum))
		return nil
	},
}
