package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/goldmacro/ledger"
	"github.com/rustyeddy/goldmacro/report"
)

var (
	balanceNote        string
	balanceHistoryDays int
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show and adjust the account balance",
	Args:  cobra.NoArgs,
	RunE:  runBalanceShow,
}

var balanceDepositCmd = &cobra.Command{
	Use:   "deposit <amount>",
	Short: "Deposit funds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adjust(args[0], ledger.ReasonDeposit)
	},
}

var balanceWithdrawCmd = &cobra.Command{
	Use:   "withdraw <amount>",
	Short: "Withdraw funds; fails rather than overdraw",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adjust(args[0], ledger.ReasonWithdrawal)
	},
}

var balanceSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Reset the account to a new balance, archiving prior history",
	Args:  cobra.ExactArgs(1),
	RunE:  runBalanceSet,
}

var balanceHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the full balance history",
	Args:  cobra.NoArgs,
	RunE:  runBalanceHistory,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.AddCommand(balanceDepositCmd)
	balanceCmd.AddCommand(balanceWithdrawCmd)
	balanceCmd.AddCommand(balanceSetCmd)
	balanceCmd.AddCommand(balanceHistoryCmd)

	balanceCmd.PersistentFlags().StringVar(&balanceNote, "note", "", "optional note for the history entry")
	balanceHistoryCmd.Flags().IntVar(&balanceHistoryDays, "days", 0, "only show entries from the last N days (0 = all)")
}

func runBalanceShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	cur, err := l.CurrentBalance(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Current balance: $%.2f\n", cur)
	return nil
}

func adjust(amountArg string, reason ledger.Reason) error {
	amount, err := strconv.ParseFloat(amountArg, 64)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	after, err := l.AdjustBalance(context.Background(), amount, reason, balanceNote)
	if err != nil {
		return err
	}
	fmt.Printf("%s $%.2f applied. New balance: $%.2f\n", reason, amount, after)
	return nil
}

func runBalanceSet(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	resetID, err := l.SetBalance(context.Background(), amount)
	if err != nil {
		return err
	}
	fmt.Printf("Account reset to $%.2f. Prior history archived under %s.\n", amount, resetID)
	return nil
}

func runBalanceHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	ctx := context.Background()
	var entries []ledger.BalanceEntry
	if balanceHistoryDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -balanceHistoryDays)
		entries, err = l.HistorySince(ctx, cutoff)
	} else {
		entries, err = l.History(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Print(report.History(entries))
	return nil
}
