// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

func init() {
	maps.Copy(sysEquate, _cpu_defines)
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
	reIdentifier = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	reLabel      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Assembler is a single pass macro assembler for the 6502.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]uint16   // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	address    uint16 // Address of the next generated byte.
	expansions int    // Count of macro expansions, for '@' labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple numeric word.
//
// Accepted forms are decimal, $hex, 0xhex, %binary, and 0b binary, with an
// optional leading '-'.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	if len(word) == 0 {
		err = ErrOpcodeValueMissing
		return
	}

	text := word
	negate := false
	if text[0] == '-' {
		negate = true
		text = text[1:]
	}

	if len(text) > 0 && text[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word)
		return
	}

	var v64 int64
	switch {
	case strings.HasPrefix(text, "$"):
		v64, err = strconv.ParseInt(text[1:], 16, 32)
	case strings.HasPrefix(text, "%"):
		v64, err = strconv.ParseInt(text[1:], 2, 32)
	default:
		v64, err = strconv.ParseInt(text, 0, 32)
	}
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)
	if negate {
		value = -value
	}

	return
}

// operandValue evaluates an operand expression to a number or a label.
// A label not yet defined returns its name with a value of -1.
func (asm *Assembler) operandValue(expr string) (value int, label string, err error) {
	value, err = asm.valueOf(expr)
	if err == nil {
		return
	}

	if !reLabel.MatchString(expr) {
		return
	}
	err = nil

	label = expr
	addr, ok := asm.Label[label]
	if ok {
		value = int(addr)
	} else {
		value = -1
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var number int
		number, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(number)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(int(addr))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// expandEquates replaces every identifier in a word that names an equate.
// Identifier shaped runs inside numbers ($FF, %1, 0x10) are left alone.
func (asm *Assembler) expandEquates(word string) string {
	var text strings.Builder
	last := 0
	for _, loc := range reIdentifier.FindAllStringIndex(word, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && strings.IndexByte("$%0123456789", word[start-1]) >= 0 {
			continue
		}
		equate, ok := asm.Equate[word[start:end]]
		if !ok {
			continue
		}
		text.WriteString(word[last:start])
		text.WriteString(equate)
		last = end
	}
	text.WriteString(word[last:])

	return text.String()
}

// parseLine parses a single line into words, handling equates, labels, and macros.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 || !reLabel.MatchString(words[1]) {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = asm.expandEquates(words[2])
		words = words[:0]
		return
	}

	for n, word := range words {
		words[n] = asm.expandEquates(word)
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !reLabel.MatchString(label) {
			err = ErrOperandInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint16, 16)
		}
		asm.Label[label] = asm.address
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansions++
		prefix := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", prefix)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = ErrMacro{Macro: name, Line: lineno, Err: err}
				err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = ErrMacro{Macro: name, Line: lineno, Err: err}
				err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}
		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Statement = asm.Statement[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}
	asm.address = RESET_PC
	asm.expansions = 0

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Statement {
		st := &asm.Statement[n]

		if len(st.LinkLabel) == 0 {
			continue
		}
		lineno = st.LineNo
		line = strings.Join(st.Words, " ")

		label := st.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}
		switch st.LinkMode {
		case MODE_RELATIVE:
			var offset uint8
			offset, err = relativeOffset(label, st.Address, int(addr))
			if err != nil {
				return
			}
			st.Bytes[st.LinkOffset] = offset
		default:
			st.Bytes[st.LinkOffset] = uint8(addr)
			st.Bytes[st.LinkOffset+1] = uint8(addr >> 8)
		}
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// relativeOffset computes the branch displacement from a 2 byte branch at
// 'from' to 'target'.
func relativeOffset(label string, from uint16, target int) (offset uint8, err error) {
	distance := target - (int(from) + 2)
	if distance < -128 || distance > 127 {
		err = ErrBranchRange{Label: label, Distance: distance}
		return
	}
	offset = uint8(int8(distance))
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	st := Statement{
		LineNo:  lineno,
		Address: asm.address,
		Words:   words,
	}

	defer func() {
		if err != nil || len(st.Bytes) == 0 {
			return
		}
		asm.Statement = append(asm.Statement, st)
		asm.address += uint16(len(st.Bytes))
	}()

	switch words[0] {
	case ".org":
		if len(words) != 2 {
			err = ErrOriginSyntax
			return
		}
		var value int
		value, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if value < 0 || value > 0xffff {
			err = ErrValueRange
			return
		}
		if len(asm.Statement) > 0 && value < int(asm.address) {
			err = ErrOriginBackwards
			return
		}
		asm.address = uint16(value)
	case ".byte":
		var values []string
		values, err = dataValues(words[1:])
		if err != nil {
			return
		}
		for _, word := range values {
			var value int
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			if value < -128 || value > 0xff {
				err = ErrValueRange
				return
			}
			st.Bytes = append(st.Bytes, uint8(value))
		}
	case ".word":
		var values []string
		values, err = dataValues(words[1:])
		if err != nil {
			return
		}
		for _, word := range values {
			var value int
			var label string
			value, label, err = asm.operandValue(word)
			if err != nil {
				return
			}
			if value < 0 && len(label) != 0 {
				if len(st.LinkLabel) != 0 {
					err = ErrOperandInvalid
					return
				}
				st.LinkLabel = label
				st.LinkMode = MODE_ABSOLUTE
				st.LinkOffset = len(st.Bytes)
				value = 0
			}
			if value < -0x8000 || value > 0xffff {
				err = ErrValueRange
				return
			}
			st.Bytes = append(st.Bytes, uint8(value), uint8(value>>8))
		}
	default:
		op, ok := OperationOf(words[0])
		if !ok {
			err = ErrInstructionInvalid
			return
		}
		err = asm.encode(&st, op, strings.Join(words[1:], ""))
	}

	return
}

// dataValues splits comma separated data words.
func dataValues(words []string) (values []string, err error) {
	for _, word := range strings.Split(strings.Join(words, ""), ",") {
		if len(word) == 0 {
			err = ErrDataMissing
			return
		}
		values = append(values, word)
	}
	return
}

// encode selects the addressing mode of an instruction from its operand
// syntax, and generates the statement's bytes.
func (asm *Assembler) encode(st *Statement, op Operation, operand string) (err error) {
	upper := strings.ToUpper(operand)

	emit := func(mode AddressingMode, args ...uint8) (err error) {
		code, ok := Lookup(op, mode)
		if !ok {
			return ErrModeInvalid
		}
		st.Bytes = append([]byte{code}, args...)
		return nil
	}

	// zeroPage evaluates an operand that must be a zero page number.
	zeroPage := func(expr string) (value uint8, err error) {
		number, label, err := asm.operandValue(expr)
		if err != nil {
			return
		}
		if len(label) != 0 {
			err = ErrOperandInvalid
			return
		}
		if number < 0 || number > 0xff {
			err = ErrValueRange
			return
		}
		value = uint8(number)
		return
	}

	// absolute encodes the zero page or absolute form of an operand.
	absolute := func(zp_mode, abs_mode AddressingMode, expr string) (err error) {
		number, label, err := asm.operandValue(expr)
		if err != nil {
			return
		}
		if zp_mode != abs_mode && len(label) == 0 && number >= 0 && number <= 0xff {
			if _, ok := Lookup(op, zp_mode); ok {
				return emit(zp_mode, uint8(number))
			}
		}
		if number < 0 && len(label) != 0 {
			st.LinkLabel = label
			st.LinkMode = MODE_ABSOLUTE
			st.LinkOffset = 1
			number = 0
		}
		if number < 0 || number > 0xffff {
			return ErrValueRange
		}
		return emit(abs_mode, uint8(number), uint8(number>>8))
	}

	switch {
	case len(operand) == 0:
		err = emit(MODE_IMPLIED)
		if err != nil {
			err = emit(MODE_ACCUMULATOR)
		}
	case upper == "A":
		err = emit(MODE_ACCUMULATOR)
	case strings.HasPrefix(operand, "#"):
		var number int
		var label string
		number, label, err = asm.operandValue(operand[1:])
		if err != nil {
			return
		}
		if len(label) != 0 {
			err = ErrOperandInvalid
			return
		}
		if number < -128 || number > 0xff {
			err = ErrValueRange
			return
		}
		err = emit(MODE_IMMEDIATE, uint8(number))
	case strings.HasPrefix(operand, "(") && strings.HasSuffix(upper, ",X)"):
		var value uint8
		value, err = zeroPage(operand[1 : len(operand)-3])
		if err != nil {
			return
		}
		err = emit(MODE_INDIRECT_X, value)
	case strings.HasPrefix(operand, "(") && strings.HasSuffix(upper, "),Y"):
		var value uint8
		value, err = zeroPage(operand[1 : len(operand)-3])
		if err != nil {
			return
		}
		err = emit(MODE_INDIRECT_Y, value)
	case strings.HasPrefix(operand, "(") && strings.HasSuffix(operand, ")"):
		err = absolute(MODE_INDIRECT, MODE_INDIRECT, operand[1:len(operand)-1])
	case strings.HasSuffix(upper, ",X"):
		err = absolute(MODE_ZERO_PAGE_X, MODE_ABSOLUTE_X, operand[:len(operand)-2])
	case strings.HasSuffix(upper, ",Y"):
		err = absolute(MODE_ZERO_PAGE_Y, MODE_ABSOLUTE_Y, operand[:len(operand)-2])
	case op.IsBranch():
		var number int
		var label string
		number, label, err = asm.operandValue(operand)
		if err != nil {
			return
		}
		if number < 0 && len(label) != 0 {
			st.LinkLabel = label
			st.LinkMode = MODE_RELATIVE
			st.LinkOffset = 1
			err = emit(MODE_RELATIVE, 0)
			return
		}
		if len(label) == 0 {
			label = operand
		}
		var offset uint8
		offset, err = relativeOffset(label, st.Address, number)
		if err != nil {
			return
		}
		err = emit(MODE_RELATIVE, offset)
	default:
		err = absolute(MODE_ZERO_PAGE, MODE_ABSOLUTE, operand)
	}

	return
}
