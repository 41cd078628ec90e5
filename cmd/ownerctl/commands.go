package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	goOwner "github.com/MrEthical07/goOwner"
	"github.com/MrEthical07/goOwner/admin"
	"github.com/MrEthical07/goOwner/metrics/export/prometheus"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user := a.v.GetString("user")
			password := a.v.GetString("password")
			if user == "" || password == "" {
				return errors.New("--user and --password (or OWNERCTL_PASSWORD) are required")
			}

			f, err := a.facade(cmd.Context())
			if err != nil {
				return err
			}
			res := f.Login(cmd.Context(), user, password)
			if !res.Success {
				return errors.New(res.Message)
			}
			fmt.Fprintln(a.out, "logged in")
			return nil
		},
	}
	cmd.Flags().String("user", "", "owner email")
	cmd.Flags().String("password", "", "owner password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.facade(cmd.Context())
			if err != nil {
				return err
			}
			if err := f.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "logged out")
			return nil
		},
	}
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the stored credential with the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.facade(cmd.Context())
			if err != nil {
				return err
			}
			res := f.Verify(cmd.Context())
			fmt.Fprintf(a.out, "%s (%s)\n", f.State(), res.Reason)
			if !res.Authenticated {
				return goOwner.ErrNotAuthenticated
			}
			return nil
		},
	}
}

func newHeaderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "header",
		Short: "Print the Authorization header for the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.facade(cmd.Context())
			if err != nil {
				return err
			}
			h := f.AuthHeader(cmd.Context())
			if len(h) == 0 {
				return goOwner.ErrNotAuthenticated
			}
			for k := range h {
				fmt.Fprintf(a.out, "%s: %s\n", k, h.Get(k))
			}
			return nil
		},
	}
}

// adminClient verifies the stored credential before handing out a client, so a revoked
// credential is cleared rather than used.
func (a *app) adminClient(cmd *cobra.Command) (*admin.Client, error) {
	f, err := a.facade(cmd.Context())
	if err != nil {
		return nil, err
	}
	if res := f.Verify(cmd.Context()); !res.Authenticated {
		return nil, goOwner.ErrNotAuthenticated
	}
	return admin.New(f.BackendURL(), f, admin.WithLogger(a.logger)), nil
}

func newOrdersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.adminClient(cmd)
			if err != nil {
				return err
			}
			status, _ := cmd.Flags().GetString("status")
			orders, err := client.ListOrders(cmd.Context(), status)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NUMBER\tCUSTOMER\tSTATUS\tTOTAL")
			for _, o := range orders {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", o.OrderNumber, o.CustomerName, o.Status, o.Total)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("status", "", "filter by status")
	return cmd
}

func newCouponsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "coupons",
		Short: "List coupons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.adminClient(cmd)
			if err != nil {
				return err
			}
			coupons, err := client.ListCoupons(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tTYPE\tVALUE\tUSED\tACTIVE")
			for _, c := range coupons {
				fmt.Fprintf(tw, "%s\t%s\t%g\t%d\t%t\n", c.Code, c.Type, c.Value, c.UsageCount, c.IsActive)
			}
			return tw.Flush()
		},
	}
}

func newMetricsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Verify once and print the facade counters in Prometheus format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.facade(cmd.Context())
			if err != nil {
				return err
			}
			f.Verify(cmd.Context())
			fmt.Fprint(a.out, prometheus.NewPrometheusExporter(f).Render())
			return nil
		},
	}
}

