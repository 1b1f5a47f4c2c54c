// Command fwdcalc prints the tenor ladder for a trade date and, given a spot
// rate and a swap-point grid, the forward rate at a target.
//
//	fwdcalc --today 2025-01-02 --spot 1350 --points 1M=-53,3M=-114 --days 20
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"fx-forward-desk/internal/calendar"
	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/pricing"
	"fx-forward-desk/internal/settlement"
)

func main() {
	today := flag.String("today", "", "Trade date YYYY-MM-DD (default: today in Seoul)")
	spot := flag.String("spot", "", "Spot rate; enables the forward calculation")
	points := flag.String("points", "", "Swap-point grid, e.g. 1M=-53,3M=-114")
	date := flag.String("date", "", "Target settlement date YYYY-MM-DD")
	days := flag.Int("days", -1, "Target days from SPOT")
	tenor := flag.String("tenor", "", "Target tenor, e.g. 2M")
	lenient := flag.Bool("lenient", false, "Resolve unrecognized tenors to SPOT instead of failing")
	flag.Parse()

	if err := run(os.Stdout, options{
		today:   *today,
		spot:    *spot,
		points:  *points,
		date:    *date,
		days:    *days,
		tenor:   *tenor,
		lenient: *lenient,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	today   string
	spot    string
	points  string
	date    string
	days    int
	tenor   string
	lenient bool
}

func run(w io.Writer, opts options) error {
	var calcOpts []settlement.Option
	if opts.lenient {
		calcOpts = append(calcOpts, settlement.WithLenientTenors())
	}
	calc := settlement.Default(calcOpts...)

	var tradeDate time.Time
	if opts.today != "" {
		d, err := calendar.ParseDate(opts.today)
		if err != nil {
			return err
		}
		tradeDate = d
	} else {
		tradeDate = calendar.Date(time.Now().In(pricing.DefaultLocation))
	}
	a := calc.Anchor(tradeDate)

	ladder, err := calc.Ladder(a, nil)
	if err != nil {
		return err
	}
	printLadder(w, a, ladder)

	if opts.spot == "" {
		return nil
	}
	spotRate, err := decimal.NewFromString(opts.spot)
	if err != nil {
		return fmt.Errorf("spot: %w", err)
	}
	grid, err := parsePoints(opts.points)
	if err != nil {
		return err
	}
	target, err := resolveTarget(calc, a, opts)
	if err != nil {
		return err
	}

	svc := pricing.New(pricing.Options{Calculator: calc})
	res, err := svc.Calculate(pricing.CalculateRequest{
		Today:    tradeDate,
		SpotRate: spotRate,
		Points:   grid,
		Target:   target,
	})
	if err != nil {
		return err
	}

	r := res.Result
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Target:       %s (%d days from SPOT)\n",
		settlement.DateFromSpot(a, r.Days).Format(calendar.DateLayout), r.Days)
	fmt.Fprintf(w, "Method:       %s\n", r.Method)
	fmt.Fprintf(w, "Swap point:   %s\n", r.SwapPoint.StringFixed(2))
	fmt.Fprintf(w, "Spot rate:    %s\n", spotRate.String())
	fmt.Fprintf(w, "Forward rate: %s\n", r.ForwardRate.StringFixed(4))
	return nil
}

func printLadder(w io.Writer, a settlement.SpotAnchor, ladder []settlement.TenorDate) {
	fmt.Fprintf(w, "Trade date %s, SPOT %s\n\n", a.Today.Format(calendar.DateLayout), a.Spot.Format(calendar.DateLayout))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TENOR\tSTART\tSETTLEMENT\tDAYS")
	for _, row := range ladder {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", row.Tenor,
			row.StartDate.Format(calendar.DateLayout),
			row.SettlementDate.Format(calendar.DateLayout),
			row.DaysFromSpot)
	}
	tw.Flush()
}

// parsePoints reads "1M=-53,3M=-114".
func parsePoints(s string) (map[domain.Tenor]decimal.Decimal, error) {
	grid := make(map[domain.Tenor]decimal.Decimal)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		label, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("point %q: want TENOR=VALUE", part)
		}
		tenor, err := domain.ParseTenor(label)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", part, err)
		}
		v, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", part, err)
		}
		grid[tenor] = v
	}
	return grid, nil
}

// resolveTarget picks exactly one of --date, --days and --tenor.
func resolveTarget(calc *settlement.Calculator, a settlement.SpotAnchor, opts options) (pricing.Target, error) {
	set := 0
	for _, given := range []bool{opts.date != "", opts.days >= 0, opts.tenor != ""} {
		if given {
			set++
		}
	}
	if set != 1 {
		return pricing.Target{}, fmt.Errorf("give exactly one of --date, --days, --tenor")
	}

	switch {
	case opts.date != "":
		d, err := calendar.ParseDate(opts.date)
		if err != nil {
			return pricing.Target{}, err
		}
		return pricing.AtDate(d), nil
	case opts.tenor != "":
		d, err := calc.SettlementDate(a, domain.Tenor(opts.tenor))
		if err != nil {
			return pricing.Target{}, err
		}
		return pricing.AtDate(d), nil
	}
	return pricing.AtDays(opts.days), nil
}
