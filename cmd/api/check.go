package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/repository/memory"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the seed data and verify the store invariants",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			store, err := memory.NewSeeded(ctx)
			if err != nil {
				return fmt.Errorf("failed to seed store: %w", err)
			}
			if err := store.CheckInvariants(); err != nil {
				return fmt.Errorf("store invariants violated: %w", err)
			}

			patients, err := store.ListPatients(ctx, model.PatientFilter{})
			if err != nil {
				return err
			}
			free, err := store.AvailableBeds(ctx)
			if err != nil {
				return err
			}
			appointments, err := store.ListAppointments(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d patients, %d appointments, %d free beds\n", len(patients), len(appointments), len(free))
			return nil
		},
	}
}
