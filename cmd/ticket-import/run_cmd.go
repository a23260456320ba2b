package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-import/internal/api/dto"
	"github.com/spec-kit/ticket-import/internal/domain"
	"github.com/spec-kit/ticket-import/internal/importer"
	"github.com/spec-kit/ticket-import/internal/repository"
	"github.com/spec-kit/ticket-import/internal/service"
)

func newRunCmd(open envOpener) *cobra.Command {
	var (
		file        string
		actorRef    string
		entity      int64
		noHeaders   bool
		followup    bool
		mappingPath string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Import tickets from a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping, err := loadMapping(mappingPath)
			if err != nil {
				return withCode(exitUsage, err)
			}

			env, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.close()

			user, err := resolveActor(cmd.Context(), env.users, actorRef)
			if err != nil {
				return err
			}
			actor := service.Actor{UserID: user.ID, ActiveEntityID: user.EntityID, HasActiveEntity: true}
			if cmd.Flags().Changed("entity") {
				actor.ActiveEntityID = entity
			}

			opts := importer.Options{
				HasHeaders:   !noHeaders,
				AddFollowup:  followup,
				FieldMapping: mapping,
			}
			result, err := env.imports.ImportFile(cmd.Context(), actor, file, opts)
			if result == nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				tickets, terr := env.imports.ImportedTickets(cmd.Context(), result)
				if terr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: imported ticket titles unavailable: %v\n", terr)
				}
				if werr := writeJSON(out, dto.NewImportRunResponse(result, tickets)); werr != nil {
					return werr
				}
			} else {
				for _, line := range result.DetailLines() {
					fmt.Fprintln(out, line)
				}
				for _, id := range result.CreatedIDs {
					fmt.Fprintln(out, dto.TicketLink(id))
				}
			}
			if err != nil {
				return classify(err)
			}
			if result.ErrorCount > 0 {
				return withCode(exitValidation, fmt.Errorf("%d rows failed", result.ErrorCount))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV file to import (required)")
	cmd.Flags().StringVar(&actorRef, "actor", "", "Login or id of the importing user (required)")
	cmd.Flags().Int64Var(&entity, "entity", 0, "Active entity id (default: the actor's entity)")
	cmd.Flags().BoolVar(&noHeaders, "no-headers", false, "The first row is data, not headers")
	cmd.Flags().BoolVar(&followup, "followup", true, "Add a follow-up to each created ticket")
	cmd.Flags().StringVar(&mappingPath, "mapping", "", "JSON file mapping source headers to fields")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

// resolveActor finds the importing user by numeric id or login.
func resolveActor(ctx context.Context, users repository.UserRepository, ref string) (*domain.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, withCode(exitUsage, errors.New("--actor is required"))
	}
	var (
		user *domain.User
		err  error
	)
	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		user, err = users.GetByID(ctx, id)
	} else {
		user, err = users.GetByLogin(ctx, ref)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, withCode(exitValidation, fmt.Errorf("unknown actor %q", ref))
	}
	if err != nil {
		return nil, withCode(exitDB, err)
	}
	if !user.Active {
		return nil, withCode(exitValidation, fmt.Errorf("actor %q is disabled", ref))
	}
	return user, nil
}

// loadMapping reads a JSON object of source header to field name.
func loadMapping(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read --mapping: %w", err)
	}
	var mapping map[string]string
	if err := json.Unmarshal(raw, &mapping); err != nil {
		return nil, fmt.Errorf("invalid --mapping: expected a JSON object of strings: %w", err)
	}
	return mapping, nil
}
