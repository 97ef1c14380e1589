package cmd

import (
	"encoding/json"
	"fmt"

	"camo/engine"
	"camo/profile"
	"camo/telemetry"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate fingerprints without running the server",
	Run: func(cmd *cobra.Command, args []string) {
		profileID, _ := cmd.Flags().GetString("profile")
		session, _ := cmd.Flags().GetString("session")
		count, _ := cmd.Flags().GetInt("count")
		if count < 1 {
			count = 1
		}
		eng, err := engine.New(profile.NewStore(), telemetry.Noop())
		if err != nil {
			logger.Fatalln(err)
		}
		defer eng.Close()
		for i := 0; i < count; i++ {
			id := session
			if id == "" || count > 1 {
				id = uuid.NewString()
			}
			fp := eng.GenerateForSession(id, profileID, nil)
			b, err := json.MarshalIndent(fp, "", "    ")
			if err != nil {
				logger.Fatalln(err)
			}
			fmt.Println(string(b))
		}
	},
}

func init() {
	generateCmd.Flags().StringP("profile", "p", "", "profile id, empty for the default")
	generateCmd.Flags().StringP("session", "s", "", "session id, random uuid if empty")
	generateCmd.Flags().IntP("count", "n", 1, "number of fingerprints")
	rootCmd.AddCommand(generateCmd)
}
