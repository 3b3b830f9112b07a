package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/soyeahso/toolchat/internal/hooks"
	"github.com/spf13/cobra"
)

func newToolsCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools each agent of a profile can call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfig(); err != nil {
				return err
			}
			name, prof, err := cfg.ActiveProfile(profile)
			if err != nil {
				return err
			}

			rt, err := buildRuntime(cmd.Context(), cfg, name, prof, hooks.NewManager(log), log)
			if err != nil {
				return err
			}
			defer rt.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Profile: %s\n", name)
			for i, r := range rt.runners {
				entry := prof.Agents[i]
				fmt.Fprintf(w, "\n%s (%s)\tmodel=%s\n", r.Name(), r.ID(), entry.Model)
				defs := r.Tools().Definitions()
				if len(defs) == 0 {
					fmt.Fprintln(w, "  (no tools)")
				}
				for _, d := range defs {
					fmt.Fprintf(w, "  %s\t%s\n", d.Name, firstLine(d.Description))
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "profile to inspect (default from config)")
	return cmd
}

func firstLine(s string) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	return s
}
