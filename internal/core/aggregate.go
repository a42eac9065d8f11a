package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ContextCheckInterval is how often (in lines) ProcessReader checks for
// cancellation.
var ContextCheckInterval = 100

// MaxLineBytes bounds how much of a single input line ProcessReader keeps.
// Longer lines are reported as line errors and skipped.
var MaxLineBytes = 64 * 1024

// ErrLineTooLong is the cause of the line error recorded for a line longer
// than MaxLineBytes.
var ErrLineTooLong = errors.New("line too long")

// Aggregator folds parsed lines into users, orders and products. The zero
// value is not usable; create one with NewAggregator.
type Aggregator struct {
	users  []*userEntry
	byID   map[int64]*userEntry
	errors []string
	lines  int
}

type userEntry struct {
	user   User
	orders map[int64]int // order ID -> index in user.Orders
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{byID: make(map[int64]*userEntry)}
}

// ProcessAll parses and aggregates lines numbered from 1.
func ProcessAll(lines []string) AggregationResult {
	agg := NewAggregator()
	for _, line := range lines {
		agg.Add(line)
	}
	return agg.Result()
}

// ProcessReader reads r line by line and aggregates it. On cancellation or a
// read failure it returns what was aggregated so far together with the error.
// Lines longer than MaxLineBytes become line errors and reading continues.
func ProcessReader(ctx context.Context, r io.Reader) (AggregationResult, error) {
	return processReader(ctx, r, MaxLineBytes)
}

func processReader(ctx context.Context, r io.Reader, maxLineBytes int) (AggregationResult, error) {
	agg := NewAggregator()
	br := bufio.NewReaderSize(r, min(4096, maxLineBytes))

	var buf []byte
	for {
		if agg.lines%ContextCheckInterval == 0 && ctx.Err() != nil {
			return agg.Result(), ctx.Err()
		}

		line, tooLong, err := readLine(br, buf[:0], maxLineBytes)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return agg.Result(), fmt.Errorf("read input: line %d: %w", agg.lines+1, err)
		}
		buf = line

		if tooLong {
			agg.addTooLong(maxLineBytes)
			continue
		}
		agg.Add(string(line))
	}

	return agg.Result(), nil
}

// readLine appends the next line to buf without its line ending. A line over
// maxLineBytes is drained to its end and reported as tooLong with no content.
// io.EOF is only returned when no line is left.
func readLine(br *bufio.Reader, buf []byte, maxLineBytes int) (line []byte, tooLong bool, err error) {
	for {
		frag, isPrefix, err := br.ReadLine()
		if err != nil {
			return buf, tooLong, err
		}
		if !tooLong {
			if len(buf)+len(frag) > maxLineBytes {
				tooLong = true
				buf = buf[:0]
			} else {
				buf = append(buf, frag...)
			}
		}
		if !isPrefix {
			return buf, tooLong, nil
		}
	}
}

// Add consumes the next physical line. Blank lines only advance the line
// counter.
func (a *Aggregator) Add(line string) {
	a.lines++
	line = strings.TrimSuffix(line, "\r")
	if strings.TrimSpace(line) == "" {
		return
	}
	if !utf8.ValidString(line) {
		// One U+FFFD per invalid byte keeps later fields at their offsets.
		line = string([]rune(line))
	}

	n := a.lines
	defer func() {
		if r := recover(); r != nil {
			a.errors = append(a.errors, LineError{Line: n, Err: fmt.Errorf("unexpected error: %v", r)}.Error())
		}
	}()

	parsed, errs := ParseLine(line, n)
	if len(errs) > 0 {
		for _, e := range errs {
			a.errors = append(a.errors, e.Error())
		}
		return
	}
	a.fold(parsed)
}

// addTooLong records a line that was skipped for exceeding limit bytes.
func (a *Aggregator) addTooLong(limit int) {
	a.lines++
	err := fmt.Errorf("%w: exceeds %d bytes", ErrLineTooLong, limit)
	a.errors = append(a.errors, LineError{Line: a.lines, Err: err}.Error())
}

// fold applies get-or-create on user and order. Name and date come from the
// first line that creates them; the product is always appended.
func (a *Aggregator) fold(p *ParsedLine) {
	entry, ok := a.byID[p.UserID]
	if !ok {
		entry = &userEntry{
			user:   User{ID: p.UserID, Name: p.Name, Orders: []Order{}},
			orders: make(map[int64]int),
		}
		a.byID[p.UserID] = entry
		a.users = append(a.users, entry)
	}

	idx, ok := entry.orders[p.OrderID]
	if !ok {
		entry.user.Orders = append(entry.user.Orders, Order{ID: p.OrderID, Date: p.Date, Products: []Product{}})
		idx = len(entry.user.Orders) - 1
		entry.orders[p.OrderID] = idx
	}

	order := &entry.user.Orders[idx]
	order.Products = append(order.Products, Product{ID: p.ProductID, Price: p.Value})
}

// Result returns a snapshot of the aggregation so far. Later calls to Add do
// not affect a returned result.
func (a *Aggregator) Result() AggregationResult {
	users := make([]User, len(a.users))
	for i, e := range a.users {
		users[i] = e.user.Clone()
	}
	errs := append([]string{}, a.errors...)
	return AggregationResult{Users: users, Errors: errs, LinesRead: a.lines}
}
