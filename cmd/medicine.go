package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	inErrors "github.com/Alturino/medstore/internal/errors"
	"github.com/Alturino/medstore/internal/report"
	"github.com/Alturino/medstore/internal/repository"
)

type medicineFlags struct {
	id      int32
	name    string
	price   string
	stock   int32
	expiry  string
	company string
}

func (f *medicineFlags) register(cmd *cobra.Command, withID bool) {
	if withID {
		cmd.Flags().Int32Var(&f.id, "id", 0, "medicine id")
		cmd.MarkFlagRequired("id")
	}
	cmd.Flags().StringVar(&f.name, "name", "", "medicine name")
	cmd.Flags().StringVar(&f.price, "price", "0", "unit price")
	cmd.Flags().Int32Var(&f.stock, "stock", 0, "units in stock")
	cmd.Flags().StringVar(&f.expiry, "expiry", "", "expiry date, free text")
	cmd.Flags().StringVar(&f.company, "company", "", "manufacturer")
}

// apply overlays the flags the user actually set on base.
func (f *medicineFlags) apply(cmd *cobra.Command, base repository.MedicineFields) (repository.MedicineFields, error) {
	flags := cmd.Flags()
	if flags.Changed("name") {
		base.Name = f.name
	}
	if flags.Changed("price") {
		price, err := decimal.NewFromString(f.price)
		if err != nil {
			return base, fmt.Errorf("%w: price=%q: %w", inErrors.ErrInvalidMedicine, f.price, err)
		}
		base.Price = price
	}
	if flags.Changed("stock") {
		base.Stock = f.stock
	}
	if flags.Changed("expiry") {
		base.Expiry = f.expiry
	}
	if flags.Changed("company") {
		base.Company = f.company
	}
	return base, nil
}

func parseID(raw string) (int32, error) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id=%q", inErrors.ErrInvalidSelection, raw)
	}
	return int32(id), nil
}

func newMedicineCommand(a *app) *cobra.Command {
	medicineCmd := &cobra.Command{
		Use:     "medicine",
		Aliases: []string{"medicines"},
		Short:   "Manage the medicine catalog",
	}

	addFlags := &medicineFlags{}
	addCmd := &cobra.Command{
		Use:         "add",
		Annotations: autoBackupAnnotation,
		Short:       "Add a medicine",
		Args:        cobra.NoArgs,
		RunE:        func(cmd *cobra.Command, args []string) error {
			fields, err := addFlags.apply(cmd, repository.MedicineFields{Price: decimal.Zero})
			if err != nil {
				return err
			}
			m := fields.Medicine(addFlags.id)
			if err := a.svc.AddMedicine(cmd.Context(), m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Medicine added: %d %s\n", m.ID, m.Name)
			return nil
		},
	}
	addFlags.register(addCmd, true)

	updateFlags := &medicineFlags{}
	updateCmd := &cobra.Command{
		Use:         "update <id>",
		Annotations: autoBackupAnnotation,
		Short:       "Update a medicine, fields not given keep their value",
		Args:        cobra.ExactArgs(1),
		RunE:        func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := a.svc.FindMedicine(cmd.Context(), id)
			if err != nil {
				return err
			}
			fields, err := updateFlags.apply(cmd, current.Fields())
			if err != nil {
				return err
			}
			updated, err := a.svc.UpdateMedicine(cmd.Context(), id, fields)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Medicine updated: %d %s\n", updated.ID, updated.Name)
			return nil
		},
	}
	updateFlags.register(updateCmd, false)

	deleteCmd := &cobra.Command{
		Use:         "delete <id>",
		Annotations: autoBackupAnnotation,
		Short:       "Delete a medicine",
		Args:        cobra.ExactArgs(1),
		RunE:        func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.DeleteMedicine(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Medicine deleted: %d\n", id)
			return nil
		},
	}

	findCmd := &cobra.Command{
		Use:   "find <id>",
		Short: "Show one medicine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := a.svc.FindMedicine(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeMedicines(cmd.OutOrStdout(), []repository.Medicine{m})
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search [query]",
		Short: "List medicines whose name or id contains query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return writeMedicines(cmd.OutOrStdout(), a.svc.SearchMedicines(cmd.Context(), query))
		},
	}

	lowStockCmd := &cobra.Command{
		Use:   "low-stock",
		Short: "List medicines below the low stock threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeMedicines(cmd.OutOrStdout(), a.svc.LowStock(cmd.Context()))
		},
	}

	var days int
	expiringCmd := &cobra.Command{
		Use:   "expiring",
		Short: "List medicines expired or expiring soon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := a.svc.ExpiringMedicines(cmd.Context(), time.Duration(days)*24*time.Hour)
			return writeExpiry(cmd.OutOrStdout(), result)
		},
	}
	expiringCmd.Flags().IntVar(&days, "days", 30, "window in days")

	medicineCmd.AddCommand(addCmd, updateCmd, deleteCmd, findCmd, searchCmd, lowStockCmd, expiringCmd)
	return medicineCmd
}

func writeMedicines(out io.Writer, medicines []repository.Medicine) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK\tEXPIRY\tCOMPANY\t")
	for _, m := range medicines {
		name := m.Name
		if m.IsLowStock() {
			name += " (LOW STOCK)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t\n", m.ID, name, m.Price.StringFixed(2), m.Stock, m.Expiry, m.Company)
	}
	return w.Flush()
}

func writeExpiry(out io.Writer, result report.ExpiryReport) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tID\tNAME\tEXPIRY\t")
	for _, e := range result.Expired {
		fmt.Fprintf(w, "expired\t%d\t%s\t%s\t\n", e.Medicine.ID, e.Medicine.Name, e.Medicine.Expiry)
	}
	for _, e := range result.ExpiringSoon {
		fmt.Fprintf(w, "expiring\t%d\t%s\t%s\t\n", e.Medicine.ID, e.Medicine.Name, e.Medicine.Expiry)
	}
	for _, m := range result.Unparseable {
		fmt.Fprintf(w, "unknown\t%d\t%s\t%s\t\n", m.ID, m.Name, m.Expiry)
	}
	return w.Flush()
}
