package dabs

import "testing"

// scriptedRNG отдаёт заранее заданные значения и запоминает аргументы.
type scriptedRNG struct {
	t     *testing.T
	vals  []int64
	calls []int64
}

func script(t *testing.T, vals ...int64) *scriptedRNG {
	return &scriptedRNG{t: t, vals: vals}
}

func (r *scriptedRNG) Int64N(n int64) int64 {
	r.calls = append(r.calls, n)
	if len(r.vals) == 0 {
		r.t.Fatalf("scriptedRNG: нет значений для Int64N(%d)", n)
	}
	v := r.vals[0]
	r.vals = r.vals[1:]
	if v < 0 || v >= n {
		r.t.Fatalf("scriptedRNG: %d вне [0,%d)", v, n)
	}
	return v
}

func withDabs(dabs int64) *Record {
	rec := NewRecord()
	rec.Dabs = dabs
	rec.trackDabs()
	return rec
}

func ebilWithDabs(dabs int64) *Record {
	rec := withDabs(dabs)
	rec.Positive = false
	return rec
}
