package main

import "testing"

// End-to-end scenarios: straight-line arithmetic, IF/ELSE branching, a
// counted DO/LOOP, word definition + redefinition shadowing, ." string
// literal output, BEGIN/WHILE/REPEAT, VARIABLE/CONSTANT, and a
// capacity-exhaustion error that aborts only its own line.

func TestArithmeticScenario(t *testing.T) {
	vmTest("basic arithmetic").
		withInput("2 3 + 4 * .\n").
		expectOutputString("20 ").
		run(t)
}

func TestIfElseScenario(t *testing.T) {
	vmTest("if-false").
		withInput(": SIGN DUP 0 < IF DROP -1 ELSE DROP 1 THEN ;\n5 SIGN .\n").
		expectOutputString("1 ").
		run(t)

	vmTest("if-true").
		withInput(": SIGN DUP 0 < IF DROP -1 ELSE DROP 1 THEN ;\n-5 SIGN .\n").
		expectOutputString("-1 ").
		run(t)
}

func TestCountedLoopScenario(t *testing.T) {
	vmTest("do-loop sum").
		withInput(": SUM5 0 5 0 DO I + LOOP ;\nSUM5 .\n").
		expectOutputString("10 ").
		run(t)
}

func TestWordRedefinitionScenario(t *testing.T) {
	vmTest("redefine shadows, does not replace").
		withInput(": DOUBLE 2 * ;\n: DOUBLE DUP + ;\n5 DOUBLE .\n").
		expectOutputString("10 ").
		expectWord("DOUBLE").
		run(t)
}

func TestDotQuoteScenario(t *testing.T) {
	vmTest("immediate dot-quote").
		withInput(`." hello"` + "\n").
		expectOutputString("hello").
		run(t)

	vmTest("compiled dot-quote").
		withInput(": GREET "+`."`+` hi" ;`+"\nGREET\n").
		expectOutputString("hi").
		run(t)
}

func TestCapacityExhaustedAbortsOnlyItsLine(t *testing.T) {
	vmTest("tiny arena recovers on next line").
		withArenaCapacity(150).
		withInput(": TOOBIG 1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16 ;\n; 1 2 + .\n").
		expectOutputString("3 ").
		run(t)
}

func TestStackOperators(t *testing.T) {
	vmTest("dup swap").
		withInput("1 2 DUP . . SWAP . .\n").
		expectOutputString("2 2 0 1 ").
		run(t)
}

func TestBeginWhileRepeat(t *testing.T) {
	vmTest("countdown").
		withInput(": COUNTDOWN BEGIN DUP 0 > WHILE DUP . 1 - REPEAT DROP ;\n3 COUNTDOWN\n").
		expectOutputString("3 2 1 ").
		run(t)
}

func TestVariableAndConstant(t *testing.T) {
	vmTest("variable store/fetch, constant").
		withInput("VARIABLE X 42 X ! X @ .\n10 CONSTANT TEN TEN .\n").
		expectOutputString("42 10 ").
		run(t)
}
