/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"io"
)

type tableProgress struct {
	total   int
	count   int
	printed int
	step    int
}

// cliProgress prints per-table row counts, throttled to about twenty lines
// per table. It implements both backup progress reporter interfaces.
type cliProgress struct {
	out    io.Writer
	verb   string
	tables map[string]*tableProgress
}

func newCLIProgress(out io.Writer, verb string) *cliProgress {
	return &cliProgress{out: out, verb: verb, tables: make(map[string]*tableProgress)}
}

func (p *cliProgress) StartTable(table string, total int) {
	total = max(total, 0)
	p.tables[table] = &tableProgress{total: total, step: progressStep(total)}
	if total > 0 {
		fmt.Fprintf(p.out, "%s %s: %d rows\n", p.verb, table, total)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", p.verb, table)
}

func (p *cliProgress) Increment(table string, delta int) {
	t := p.tables[table]
	if t == nil || delta <= 0 {
		return
	}
	t.count += delta
	if t.count == t.total || t.printed == 0 || t.count-t.printed >= t.step {
		p.print(table, t)
	}
}

func (p *cliProgress) FinishTable(table string) {
	t := p.tables[table]
	if t == nil {
		return
	}
	if t.count != t.printed {
		p.print(table, t)
	}
	fmt.Fprintf(p.out, "%s %s done: %d rows\n", p.verb, table, t.count)
	delete(p.tables, table)
}

func (p *cliProgress) print(table string, t *tableProgress) {
	if t.total > 0 {
		fmt.Fprintf(p.out, "  %s: %d/%d\n", table, t.count, t.total)
	} else {
		fmt.Fprintf(p.out, "  %s: %d rows processed\n", table, t.count)
	}
	t.printed = t.count
}

// progressStep picks the print interval: 5% of the table, between 1 and 1000
// rows. Unknown totals print every 1000 rows.
func progressStep(total int) int {
	if total <= 0 {
		return 1000
	}
	return min(max(total/20, 1), 1000)
}
