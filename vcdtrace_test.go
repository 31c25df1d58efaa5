package vcdtrace_test

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angli232/vcdtrace"
)

const sampleVCD = `$date
	Wed Jun 4 15:24:01 2024
$end
$version
	Simulator Version
$end
$timescale 1ns $end
$scope module top $end
$var wire 1 ! clk $end
$var reg 8 " counter $end
$var reg 8 " counter_alias $end
$upscope $end
$enddefinitions $end
#0
0!
b00000000 "
#10
1!
b00000001 "
#20
0!
b00000010 "
$dumpoff
x!
bxxxxxxxx "
$dumpon
#30
1!
b00000011 "
`

func bigInt(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad fixture: " + s)
	}
	return n
}

func mustDecode(t *testing.T) *vcdtrace.Trace {
	t.Helper()
	tr, err := vcdtrace.Decode(strings.NewReader(sampleVCD))
	require.NoError(t, err)
	require.NotNil(t, tr)
	return tr
}

func findSignal(t *testing.T, tr *vcdtrace.Trace, scope vcdtrace.ScopeIdx, name string) *vcdtrace.Signal {
	t.Helper()
	for _, idx := range tr.SignalsIn(scope) {
		s := tr.Signal(idx)
		if s.Name() == name {
			return s
		}
	}
	t.Fatalf("no signal named %q in scope", name)
	return nil
}

func TestDecodeMetadata(t *testing.T) {
	tr := mustDecode(t)
	md := tr.Metadata()

	require.True(t, md.HasDate)
	require.Equal(t, time.June, md.Date.Month())
	require.Equal(t, 4, md.Date.Day())
	require.Equal(t, 2024, md.Date.Year())

	require.True(t, md.HasVersion)
	require.Equal(t, "Simulator Version", md.Version)

	require.True(t, md.HasTimescale)
	require.Equal(t, uint32(1), md.TimescaleN)
	require.Equal(t, vcdtrace.TimescaleNs, md.TimescaleUnit)
}

func TestDecodeScopeHierarchy(t *testing.T) {
	tr := mustDecode(t)

	roots := tr.RootScopes()
	require.Len(t, roots, 1)
	require.Equal(t, "top", tr.ScopeName(roots[0]))

	sigs := tr.SignalsIn(roots[0])
	require.Len(t, sigs, 3)
}

func TestSignalIdentity(t *testing.T) {
	tr := mustDecode(t)
	top := tr.RootScopes()[0]

	clk := findSignal(t, tr, top, "clk")
	require.Equal(t, "wire", clk.SigType())
	require.NoError(t, clk.Error())

	counter := findSignal(t, tr, top, "counter")
	require.Equal(t, "reg", counter.SigType())

	alias := findSignal(t, tr, top, "counter_alias")
	require.Equal(t, "counter_alias", alias.Name())
	resolved, err := alias.Resolve()
	require.NoError(t, err)
	require.Equal(t, "counter", resolved.Name())
	require.Equal(t, counter.SigType(), resolved.SigType())
}

func TestQueryNumAtExactAndInterpolatedTimes(t *testing.T) {
	tr := mustDecode(t)
	top := tr.RootScopes()[0]
	clk := findSignal(t, tr, top, "clk")
	counter := findSignal(t, tr, top, "counter")

	v, err := clk.QueryNum(bigInt("0"))
	require.NoError(t, err)
	require.Equal(t, int64(0), v.Int64())

	v, err = clk.QueryNum(bigInt("10"))
	require.NoError(t, err)
	require.Equal(t, int64(1), v.Int64())

	// 15 falls strictly between the t=10 and t=20 events: "value at or
	// before t" returns the t=10 value.
	v, err = clk.QueryNum(bigInt("15"))
	require.NoError(t, err)
	require.Equal(t, int64(1), v.Int64())

	v, err = counter.QueryNum(bigInt("25"))
	require.NoError(t, err)
	require.Equal(t, int64(2), v.Int64())

	// Past the last event, the query saturates at the final value.
	v, err = counter.QueryNum(bigInt("1000"))
	require.NoError(t, err)
	require.Equal(t, int64(3), v.Int64())
}

func TestQueryNumBeforeStart(t *testing.T) {
	tr := mustDecode(t)
	top := tr.RootScopes()[0]
	clk := findSignal(t, tr, top, "clk")

	_, err := clk.QueryNum(bigInt("-5"))
	require.ErrorIs(t, err, vcdtrace.ErrBeforeStart)
}

func TestQueryNumThroughAlias(t *testing.T) {
	tr := mustDecode(t)
	top := tr.RootScopes()[0]
	counter := findSignal(t, tr, top, "counter")
	alias := findSignal(t, tr, top, "counter_alias")

	direct, err := counter.QueryNum(bigInt("20"))
	require.NoError(t, err)

	viaAlias, err := alias.QueryNum(bigInt("20"))
	require.NoError(t, err)

	require.Equal(t, direct, viaAlias)
}

func TestQueryStringForNonBinaryValues(t *testing.T) {
	tr := mustDecode(t)
	top := tr.RootScopes()[0]
	clk := findSignal(t, tr, top, "clk")
	counter := findSignal(t, tr, top, "counter")

	s, err := clk.QueryString(bigInt("20"))
	require.NoError(t, err)
	require.Equal(t, "x", s)

	s, err = counter.QueryString(bigInt("20"))
	require.NoError(t, err)
	require.Equal(t, "bxxxxxxxx", s)

	_, err = clk.QueryString(bigInt("0"))
	require.ErrorIs(t, err, vcdtrace.ErrBeforeStart)
}

func TestDecodeEmptyInputFails(t *testing.T) {
	_, err := vcdtrace.Decode(strings.NewReader(""))
	require.Error(t, err)
}

// A scope literally named "$end" is a simulator quirk some writers emit;
// it must be elided rather than producing a visible, nameless scope node.
const transparentScopeVCD = `$timescale 1 ns $end
$scope module top $end
$scope begin $end $end
$var wire 1 % flag $end
$upscope $end
$upscope $end
$enddefinitions $end
#0
0%
`

func TestTransparentEndNamedScope(t *testing.T) {
	tr, err := vcdtrace.Decode(strings.NewReader(transparentScopeVCD))
	require.NoError(t, err)

	roots := tr.RootScopes()
	require.Len(t, roots, 1)
	top := roots[0]
	require.Equal(t, "top", tr.ScopeName(top))

	// The "$end"-named frame produced no child scope of its own.
	require.Empty(t, tr.ChildrenOf(top))

	// Its var attaches directly to "top".
	flag := findSignal(t, tr, top, "flag")
	require.Equal(t, "wire", flag.SigType())
}

func TestRealValueEventIsTolerantlySkipped(t *testing.T) {
	// "real"/"realtime"/"shortreal" are recognised $var types, but
	// real-number value reconstruction is explicitly out of scope. The
	// "r<value> <code>" event pair must still be tolerated (skipped), not
	// treated as a parse error, the same as any other unrecognised token.
	const vcd = `$timescale 1 ns $end
$var real 0 ! voltage $end
$var wire 1 " clk $end
$enddefinitions $end
#0
r1.5 !
0"
#10
1"
`
	tr, err := vcdtrace.Decode(strings.NewReader(vcd))
	require.NoError(t, err)

	top := tr.RootScopes()
	require.Len(t, top, 1)

	voltage := findSignal(t, tr, top[0], "voltage")
	_, err = voltage.QueryNum(bigInt("0"))
	require.ErrorIs(t, err, vcdtrace.ErrEmptyTimeline)

	// The signal declared after the skipped real event must still parse
	// and record its own events normally.
	clk := findSignal(t, tr, top[0], "clk")
	v, err := clk.QueryNum(bigInt("10"))
	require.NoError(t, err)
	require.Equal(t, int64(1), v.Int64())
}

func TestStrayExtraTokenOnLineIsIgnored(t *testing.T) {
	// Only the first word of a line is an event head; a second, stray
	// token sharing a line with a well-formed event must be ignored
	// rather than mis-parsed as its own event.
	const vcd = `$timescale 1 ns $end
$var wire 1 ! clk $end
$enddefinitions $end
#0
0! 1!
#10
1!
`
	tr, err := vcdtrace.Decode(strings.NewReader(vcd))
	require.NoError(t, err)

	top := tr.RootScopes()[0]
	clk := findSignal(t, tr, top, "clk")

	// If the stray "1!" on the #0 line had been treated as a second event,
	// the value at t=0 would read back as 1 instead of 0.
	v, err := clk.QueryNum(bigInt("0"))
	require.NoError(t, err)
	require.Equal(t, int64(0), v.Int64())

	v, err = clk.QueryNum(bigInt("10"))
	require.NoError(t, err)
	require.Equal(t, int64(1), v.Int64())
}

func TestScalarWidthMismatchSetsDeferredError(t *testing.T) {
	const vcd = `$timescale 1 ns $end
$var reg 4 ! x $end
$enddefinitions $end
#0
1!
`
	tr, err := vcdtrace.Decode(strings.NewReader(vcd))
	require.NoError(t, err, "a deferred per-signal error must not abort the whole parse")

	sig := tr.Signal(0)
	require.Equal(t, "x", sig.Name())
	require.Error(t, sig.Error())

	_, err = sig.QueryNum(bigInt("0"))
	require.ErrorIs(t, err, vcdtrace.ErrEmptyTimeline)
}

func TestUnknownEventCodeIsFatal(t *testing.T) {
	const vcd = `$timescale 1 ns $end
$var wire 1 ! x $end
$enddefinitions $end
#0
1@
`
	_, err := vcdtrace.Decode(strings.NewReader(vcd))
	require.Error(t, err)
	var perr *vcdtrace.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestOversizedBitWidthIsFatal(t *testing.T) {
	const vcd = `$timescale 1 ns $end
$var reg 99999 ! x $end
$enddefinitions $end
#0
`
	_, err := vcdtrace.Decode(strings.NewReader(vcd))
	require.Error(t, err)
	var perr *vcdtrace.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestUnknownTimescaleUnitIsFatal(t *testing.T) {
	const vcd = `$timescale 1 furlongs $end
$enddefinitions $end
`
	_, err := vcdtrace.Decode(strings.NewReader(vcd))
	require.Error(t, err)
	var perr *vcdtrace.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestOrphanSignalsScope(t *testing.T) {
	const orphanVCD = `$var wire 1 # lonely $end
$enddefinitions $end
#0
1#
`
	tr, err := vcdtrace.Decode(strings.NewReader(orphanVCD))
	require.NoError(t, err)

	roots := tr.RootScopes()
	require.Len(t, roots, 1)
	require.Equal(t, "Orphaned Signals", tr.ScopeName(roots[0]))

	lonely := findSignal(t, tr, roots[0], "lonely")
	v, err := lonely.QueryNum(bigInt("0"))
	require.NoError(t, err)
	require.Equal(t, int64(1), v.Int64())
}
