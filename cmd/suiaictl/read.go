package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"SuiAI-SDK/internal/ledger"
	"SuiAI-SDK/pkg/journal"
	"SuiAI-SDK/sdk/go/suiai"

	"github.com/spf13/cobra"
)

func newObjectCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "object",
		Short: "Read objects from the ledger",
	}

	var kind string
	get := &cobra.Command{
		Use:   "get <object-id>",
		Short: "Show the current state of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer a.close()

			var snapshot suiai.ObjectSnapshot
			switch kind {
			case "", "any":
				snapshot, err = a.sdk.GetObject(cmd.Context(), args[0])
			case "agent":
				snapshot, err = a.sdk.GetAgent(cmd.Context(), args[0])
			case "model":
				snapshot, err = a.sdk.GetModel(cmd.Context(), args[0])
			default:
				return fmt.Errorf("未知的对象类型 %q (可选 any, agent, model)", kind)
			}
			if err != nil {
				return err
			}
			if flags.jsonOutput {
				return printJSON(snapshot)
			}
			printField("Object", snapshot.Ref.ObjectID)
			printField("Version", snapshot.Ref.Version)
			printField("Digest", snapshot.Ref.Digest)
			printField("Type", snapshot.Type)
			printField("Owner", describeOwner(snapshot.Owner))
			if len(snapshot.Content) > 0 {
				var pretty any
				if json.Unmarshal(snapshot.Content, &pretty) == nil {
					dimColor.Println("Content:")
					return printJSON(pretty)
				}
			}
			return nil
		},
	}
	get.Flags().StringVar(&kind, "kind", "any", "expected object kind: any, agent or model")
	cmd.AddCommand(get)
	return cmd
}

func describeOwner(owner ledger.Owner) string {
	switch owner.Kind {
	case ledger.OwnerAddress, ledger.OwnerObject:
		return fmt.Sprintf("%s %s", owner.Kind, owner.Address)
	case ledger.OwnerShared:
		return fmt.Sprintf("shared (initial version %d)", owner.InitialSharedVersion)
	default:
		return string(owner.Kind)
	}
}

func newAgentsCmd(flags *rootFlags) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List agents owned by an address",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer a.close()
			if owner == "" {
				id := a.sdk.Identity()
				if id == nil {
					return errors.New("--owner 未指定且没有可用的身份")
				}
				owner = id.Address().String()
			}
			agents, err := a.sdk.QueryAgentsByOwner(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return printSnapshots(flags, agents)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner address (defaults to the signer)")
	return cmd
}

func newModelsCmd(flags *rootFlags) *cobra.Command {
	var public bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List public models",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !public {
				return errors.New("目前只支持 --public")
			}
			a, err := openApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer a.close()
			models, err := a.sdk.QueryPublicModels(cmd.Context())
			if err != nil {
				return err
			}
			return printSnapshots(flags, models)
		},
	}
	cmd.Flags().BoolVar(&public, "public", false, "list models marked public")
	return cmd
}

func printSnapshots(flags *rootFlags, snapshots []suiai.ObjectSnapshot) error {
	if flags.jsonOutput {
		return printJSON(snapshots)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OBJECT\tVERSION\tTYPE")
	for _, s := range snapshots {
		fmt.Fprintf(w, "%s\t%d\t%s\n", s.Ref.ObjectID, s.Ref.Version, s.Type)
	}
	return w.Flush()
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent submissions from the configured journal",
		Long: `Show recent submissions recorded by the journal.

Only the redis and mysql drivers keep entries across invocations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			store, err := openJournal(cmd.Context(), cfg.Journal)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("journal.driver 为 none，没有可查询的记录")
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if flags.jsonOutput {
				return printJSON(entries)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tOPERATION\tSTATUS\tGAS\tDIGEST\tERROR")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					e.SubmittedAt.Local().Format("2006-01-02 15:04:05"), e.Operation, statusLabel(e.Status), e.GasUsed, e.Digest, e.ErrorCode)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", journal.DefaultRecentLimit, "number of entries to show")
	return cmd
}

func statusLabel(status journal.Status) string {
	switch status {
	case journal.StatusSuccess:
		return okColor.Sprint(status)
	case journal.StatusUnknown:
		return warnColor.Sprint(status)
	default:
		return errColor.Sprint(status)
	}
}

func newNetworksCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List known networks and their endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			defs, err := ledger.LoadNetworkDefinitions(cfg.Network.NetworksFile)
			if err != nil {
				return err
			}
			if flags.jsonOutput {
				return printJSON(defs)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tRPC URL\tDESCRIPTION")
			for _, name := range defs.Names() {
				def := defs.Networks[name]
				marker := ""
				if name == cfg.Network.Name {
					marker = " *"
				}
				fmt.Fprintf(w, "%s%s\t%s\t%s\n", name, marker, def.RPCURL, def.Description)
			}
			return w.Flush()
		},
	}
}
