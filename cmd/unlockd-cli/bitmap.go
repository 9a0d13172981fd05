package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/UnlockdFinance/unlockd-v2/pkg/bitmap"
)

func runBitmap(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("bitmap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	price := fs.String("price", "", "Full price of the loan")
	loanID := fs.String("loanId", "", "Id of the loan")
	threshold := fs.String("threshold", "", "Threshold of the position in %")
	ltv := fs.String("ltv", "", "Ltv of the position in %")
	if err := fs.Parse(args); err != nil {
		return err
	}

	params, err := bitmap.ParseLoanParams(*price, *threshold, *ltv, *loanID)
	if err != nil {
		return err
	}
	encoded, err := bitmap.PackLoan(params)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Result: %s\n", encoded)
	return nil
}

func runBitmapDecode(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("bitmap-decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	data := fs.String("data", "", "0x-prefixed bitmap produced by the bitmap command")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *data == "" {
		return fmt.Errorf("%w: data", bitmap.ErrMissingParam)
	}

	p, err := bitmap.UnpackLoan(*data)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "price: %s\n", p.Price)
	fmt.Fprintf(stdout, "threshold: %s\n", p.Threshold)
	fmt.Fprintf(stdout, "ltv: %s\n", p.LTV)
	fmt.Fprintf(stdout, "loanId: %s\n", p.LoanID)
	return nil
}
