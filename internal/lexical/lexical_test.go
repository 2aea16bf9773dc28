package lexical

import "testing"

func check(t *testing.T, a1 any, a2 any) {
	if a1 != a2 {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", a1, a2)
	}
}

func noReserved(string) bool { return false }

func TestIsInt(t *testing.T) {
	check(t, IsInt("42"), true)
	check(t, IsInt("-42"), true)
	check(t, IsInt("+7"), true)
	check(t, IsInt(""), false)
	check(t, IsInt("-"), false)
	check(t, IsInt("4a"), false)
}

func TestRegisterIndex(t *testing.T) {
	idx, ok := RegisterIndex("r0")
	check(t, ok, true)
	check(t, idx, 0)

	idx, ok = RegisterIndex("r7")
	check(t, ok, true)
	check(t, idx, 7)

	_, ok = RegisterIndex("r8")
	check(t, ok, false)

	_, ok = RegisterIndex("r10")
	check(t, ok, false)
}

func TestIsRegisterIndirect(t *testing.T) {
	check(t, IsRegisterIndirect("*r3"), true)
	check(t, IsRegisterIndirect("r3"), false)
	check(t, IsRegisterIndirect("*r9"), false)
}

func TestIsValidLabelName(t *testing.T) {
	check(t, IsValidLabelName("LOOP", noReserved), true)
	check(t, IsValidLabelName("loop2", noReserved), true)
	check(t, IsValidLabelName("2loop", noReserved), false)
	check(t, IsValidLabelName("", noReserved), false)

	isReserved := func(s string) bool { return s == "mov" }
	check(t, IsValidLabelName("mov", isReserved), false)
}

func TestExtractLabel(t *testing.T) {
	res, name, i := ExtractLabel("LOOP: mov r1, r2", 0, noReserved)
	check(t, res, Label)
	check(t, name, "LOOP")
	check(t, i, 5)

	res, _, i = ExtractLabel("mov r1, r2", 0, noReserved)
	check(t, res, NoLabel)
	check(t, i, 0)

	isReserved := func(s string) bool { return s == "mov" }
	res, name, _ = ExtractLabel("mov: add r1, r2", 0, isReserved)
	check(t, res, InvalidLabel)
	check(t, name, "mov")
}

func TestClassifyOperand(t *testing.T) {
	check(t, ClassifyOperand("#5", noReserved), Immediate)
	check(t, ClassifyOperand("#-5", noReserved), Immediate)
	check(t, ClassifyOperand("*r2", noReserved), Indirect)
	check(t, ClassifyOperand("r2", noReserved), Register)
	check(t, ClassifyOperand("LOOP", noReserved), Direct)
	check(t, ClassifyOperand("", noReserved), NoAddress)
	check(t, ClassifyOperand("#abc", noReserved), NoAddress)
}
