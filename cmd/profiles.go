package cmd

import (
	"fmt"

	"camo/profile"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List built-in randomization profiles",
	Run: func(cmd *cobra.Command, args []string) {
		store := profile.NewStore()
		def := store.Default()
		for _, id := range store.IDs() {
			p, ok := store.Get(id)
			if !ok {
				continue
			}
			marker := " "
			if p.ID == def.ID {
				marker = "*"
			}
			c := p.Constraints.WithDefaults()
			fmt.Printf("%s %-16s level=%-8s update=%-6s ciphers=[%d,%d] max_ext=%d\n",
				marker, p.ID, p.Level, p.UpdateFrequency,
				c.MinCipherSuites, c.MaxCipherSuites, c.MaxExtensions)
		}
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
