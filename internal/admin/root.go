package admin

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the diaryadm command tree over env.
func NewRootCommand(env *Env) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "diaryadm",
		Short:         "Administrative tasks for the diary server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "JSON config file; DIARY_* variables still apply")
	root.SetOut(env.Out)
	root.SetIn(env.In)

	root.AddCommand(
		newMigrateCommand(env, &configPath),
		newUserAddCommand(env, &configPath),
		newSweepCommand(env, &configPath),
		newAttachCommand(env, &configPath),
		newSignURLCommand(env, &configPath),
	)
	return root
}
