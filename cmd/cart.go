package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	inErrors "github.com/Alturino/medstore/internal/errors"
)

type cartLine struct {
	medicineID int32
	qty        int32
}

// parseCartLine reads "<id>:<qty>".
func parseCartLine(raw string) (cartLine, error) {
	idPart, qtyPart, ok := strings.Cut(raw, ":")
	if !ok {
		return cartLine{}, fmt.Errorf("%w: item=%q, want <id>:<qty>", inErrors.ErrInvalidSelection, raw)
	}
	id, err := parseID(idPart)
	if err != nil {
		return cartLine{}, err
	}
	qty, err := strconv.ParseInt(qtyPart, 10, 32)
	if err != nil {
		return cartLine{}, fmt.Errorf("%w: item=%q", inErrors.ErrInvalidQuantity, raw)
	}
	return cartLine{medicineID: id, qty: int32(qty)}, nil
}

// newCartCommand is the one-shot sale: each --item is added to the cart in
// order, then the cart is checked out and the receipt printed. Any rejected
// item aborts the sale before stock is touched.
func newCartCommand(a *app) *cobra.Command {
	var items []string
	checkoutCmd := &cobra.Command{
		Use:         "checkout",
		Annotations: autoBackupAnnotation,
		Short:       "Sell the given items and print the receipt",
		Args:        cobra.NoArgs,
		RunE:        func(cmd *cobra.Command, args []string) error {
			c := cmd.Context()
			for _, raw := range items {
				line, err := parseCartLine(raw)
				if err != nil {
					return err
				}
				if _, err := a.svc.AddToCart(c, line.medicineID, line.qty); err != nil {
					a.svc.ClearCart(c)
					return err
				}
			}

			receipt, ok, err := a.svc.Checkout(c)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cart is empty!")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), receipt.Text())
			return nil
		},
	}
	checkoutCmd.Flags().StringArrayVar(&items, "item", nil, "item to sell as <id>:<qty>, repeatable")
	return checkoutCmd
}
