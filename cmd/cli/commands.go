package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/optiledger/internal/adapter/http/dto"
)

type options struct {
	baseURL        string
	timeout        time.Duration
	output         string
	idempotencyKey string
}

func (o *options) client() *apiClient {
	return newAPIClient(o.baseURL, o.timeout)
}

func (o *options) headers() map[string]string {
	if o.idempotencyKey == "" {
		return nil
	}
	return map[string]string{"Idempotency-Key": o.idempotencyKey}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "optiledger-cli",
		Short:         "OptiLedger CLI tool",
		Long:          `A command line interface for interacting with the OptiLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "table" && opts.output != "json" {
				return fmt.Errorf("unknown output format %q", opts.output)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the OptiLedger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format: table or json")

	rootCmd.AddCommand(accountsCmd(opts), transfersCmd(opts), ledgerCmd(opts))
	return rootCmd
}

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var (
		currency string
		balance  int64
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var account dto.AccountResponse
			err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/accounts/", opts.headers(),
				dto.CreateAccountRequest{Currency: currency, Balance: balance}, &account)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, account, func(w *tabwriter.Writer) {
				printAccounts(w, []*dto.AccountResponse{&account})
			})
		},
	}
	createCmd.Flags().StringVar(&currency, "currency", "USD", "ISO 4217 currency code")
	createCmd.Flags().Int64Var(&balance, "balance", 0, "Opening balance in minor units")
	createCmd.Flags().StringVar(&opts.idempotencyKey, "idempotency-key", "", "Idempotency-Key header")

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListAccountsResponse
			err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/accounts/"+pageQuery(limit, offset, nil), nil, nil, &resp)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, resp, func(w *tabwriter.Writer) {
				printAccounts(w, resp.Accounts)
			})
		},
	}
	addPageFlags(listCmd, &limit, &offset)

	cmd.AddCommand(createCmd, listCmd)
	return cmd
}

func transfersCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfers",
		Short: "Transfer operations",
	}

	var req dto.CreateTransferRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Move money between two accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var transfer dto.TransferResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/transfers/", opts.headers(), req, &transfer); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, transfer, func(w *tabwriter.Writer) {
				printTransfers(w, []*dto.TransferResponse{&transfer})
			})
		},
	}
	createCmd.Flags().StringVar(&req.FromAccountID, "from", "", "Source account ID")
	createCmd.Flags().StringVar(&req.ToAccountID, "to", "", "Destination account ID")
	createCmd.Flags().Int64Var(&req.Amount, "amount", 0, "Amount in minor units")
	createCmd.Flags().StringVar(&opts.idempotencyKey, "idempotency-key", "", "Idempotency-Key header")
	_ = createCmd.MarkFlagRequired("from")
	_ = createCmd.MarkFlagRequired("to")
	_ = createCmd.MarkFlagRequired("amount")

	var (
		limit, offset int
		accountID     string
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List transfers",
		RunE: func(cmd *cobra.Command, args []string) error {
			extra := url.Values{}
			if accountID != "" {
				extra.Set("account_id", accountID)
			}
			var resp dto.ListTransfersResponse
			err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/transfers/"+pageQuery(limit, offset, extra), nil, nil, &resp)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, resp, func(w *tabwriter.Writer) {
				printTransfers(w, resp.Transfers)
			})
		},
	}
	addPageFlags(listCmd, &limit, &offset)
	listCmd.Flags().StringVar(&accountID, "account", "", "Only transfers touching this account")

	cmd.AddCommand(createCmd, listCmd)
	return cmd
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ConsistencyResponse
			err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil, nil, &resp)

			var apiErr *apiError
			if err != nil && !(errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict) {
				return err
			}

			renderErr := render(cmd.OutOrStdout(), opts.output, resp, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "STATUS\t%s\n", resp.Status)
				fmt.Fprintf(w, "ACCOUNTS\t%d\n", resp.Accounts)
				fmt.Fprintf(w, "TRANSFERS\t%d\n", resp.Transfers)
				fmt.Fprintf(w, "TOTAL BALANCE\t%d\n", resp.TotalBalance)
				fmt.Fprintf(w, "OPENING BALANCE\t%d\n", resp.TotalOpeningBalance)
				fmt.Fprintf(w, "TRANSFER VOLUME\t%d\n", resp.TransferVolume)
			})
			if renderErr != nil {
				return renderErr
			}
			if !resp.Consistent {
				return errors.New("consistency check FAILED")
			}
			return nil
		},
	}

	cmd.AddCommand(consistencyCmd)
	return cmd
}

func addPageFlags(cmd *cobra.Command, limit, offset *int) {
	cmd.Flags().IntVar(limit, "limit", 20, "Page size")
	cmd.Flags().IntVar(offset, "offset", 0, "Page offset")
}

func pageQuery(limit, offset int, extra url.Values) string {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return "?" + q.Encode()
}

func render(out io.Writer, format string, v any, table func(w *tabwriter.Writer)) error {
	if format == "json" {
		return printJSON(out, v)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	table(w)
	return w.Flush()
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAccounts(w io.Writer, accounts []*dto.AccountResponse) {
	fmt.Fprintln(w, "ID\tCURRENCY\tBALANCE\tVERSION")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", a.ID, a.Currency, a.Balance, a.Version)
	}
}

func printTransfers(w io.Writer, transfers []*dto.TransferResponse) {
	fmt.Fprintln(w, "ID\tFROM\tTO\tAMOUNT\tCURRENCY")
	for _, t := range transfers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", t.ID, truncate(t.FromAccountID.String(), 13), truncate(t.ToAccountID.String(), 13), t.Amount, t.Currency)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
