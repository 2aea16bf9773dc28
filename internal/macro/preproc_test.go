package macro

import (
	"strings"
	"testing"
)

func check(t *testing.T, a1 any, a2 any) {
	if a1 != a2 {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", a1, a2)
	}
}

func TestExpandInline(t *testing.T) {
	in := "mov r1, r2\n" +
		"macr m1\n" +
		"add r1, r2\n" +
		"sub r1, r2\n" +
		"endmacr\n" +
		"m1\n" +
		"stop\n"

	var out strings.Builder
	diags, err := expand(strings.NewReader(in), &out)
	check(t, err, nil)
	check(t, len(diags), 0)

	want := "mov r1, r2\n" +
		"add r1, r2\n" +
		"sub r1, r2\n" +
		"stop\n"
	check(t, out.String(), want)
}

func TestExpandNoInvocation(t *testing.T) {
	in := "mov r1, r2\nstop\n"
	var out strings.Builder
	_, err := expand(strings.NewReader(in), &out)
	check(t, err, nil)
	check(t, out.String(), in)
}

func TestExpandIsIdempotent(t *testing.T) {
	in := "mov r1, r2\n" +
		"macr m1\n" +
		"add r1, r2\n" +
		"sub r1, r2\n" +
		"endmacr\n" +
		"m1\n" +
		"stop\n"

	var first strings.Builder
	diags, err := expand(strings.NewReader(in), &first)
	check(t, err, nil)
	check(t, len(diags), 0)

	var second strings.Builder
	diags, err = expand(strings.NewReader(first.String()), &second)
	check(t, err, nil)
	check(t, len(diags), 0)
	check(t, second.String(), first.String())
}

func TestExpandOversizedBody(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("macr big\n")
	for i := 0; i <= MaxBodyLines; i++ {
		sb.WriteString("mov r1, r2\n")
	}
	sb.WriteString("endmacr\n")

	var out strings.Builder
	diags, err := expand(strings.NewReader(sb.String()), &out)
	check(t, err, nil)
	if len(diags) == 0 {
		t.Errorf("expected an oversized-body diagnostic")
	}
}
