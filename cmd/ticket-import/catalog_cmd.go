package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-import/internal/domain"
)

var catalogKinds = []domain.CatalogKind{
	domain.CatalogCategory,
	domain.CatalogEntity,
	domain.CatalogLocation,
	domain.CatalogGroup,
}

func parseCatalogKind(raw string) (domain.CatalogKind, error) {
	kind := domain.CatalogKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, k := range catalogKinds {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown --kind %q (expected category|entity|location|group)", raw)
}

func newCatalogCmd(open envOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the lookup tables resolved by name during imports",
	}
	cmd.AddCommand(newCatalogAddCmd(open))
	cmd.AddCommand(newCatalogListCmd(open))
	return cmd
}

func newCatalogAddCmd(open envOpener) *cobra.Command {
	var kindRaw, name string
	var entity int64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a named item",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseCatalogKind(kindRaw)
			if err != nil {
				return withCode(exitUsage, err)
			}
			if strings.TrimSpace(name) == "" {
				return withCode(exitValidation, errors.New("--name must not be empty"))
			}
			env, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.close()

			item := domain.CatalogItem{Kind: kind, Name: strings.TrimSpace(name), EntityID: entity}
			if err := env.catalog.Create(cmd.Context(), &item); err != nil {
				return withCode(exitDB, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q created with id %d\n", kind, item.Name, item.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&kindRaw, "kind", "", "category|entity|location|group (required)")
	cmd.Flags().StringVar(&name, "name", "", "Item name (required)")
	cmd.Flags().Int64Var(&entity, "entity", 0, "Owning entity id")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCatalogListCmd(open envOpener) *cobra.Command {
	var kindRaw string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the items of a lookup table",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseCatalogKind(kindRaw)
			if err != nil {
				return withCode(exitUsage, err)
			}
			env, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.close()

			items, err := env.catalog.List(cmd.Context(), kind)
			if err != nil {
				return withCode(exitDB, err)
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, items)
			}
			for _, it := range items {
				fmt.Fprintf(out, "%d\t%s\t%d\n", it.ID, it.Name, it.EntityID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kindRaw, "kind", "", "category|entity|location|group (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
