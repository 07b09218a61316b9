package vm

import (
	"fmt"
	"strconv"

	"github.com/ArturMroz/clox/internal/config"
	"github.com/ArturMroz/clox/internal/lexer"
	"github.com/ArturMroz/clox/internal/token"
)

// Precedence levels, lowest to highest.
type Precedence uint8

const (
	PrecNone       Precedence = iota
	PrecAssignment            // =
	PrecOr                    // or
	PrecAnd                   // and
	PrecEquality              // == !=
	PrecComparison            // < > <= >=
	PrecTerm                  // + -
	PrecFactor                // * /
	PrecUnary                 // ! -
	PrecCall                  // . ()
	PrecPrimary
)

type parseFn func(p *Parser, canAssign bool)

// ParseRule is one row of the Pratt table.
type ParseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules []ParseRule

func init() {
	rules = []ParseRule{
		token.LEFT_PAREN:    {(*Parser).grouping, (*Parser).call, PrecCall},
		token.RIGHT_PAREN:   {nil, nil, PrecNone},
		token.LEFT_BRACE:    {nil, nil, PrecNone},
		token.RIGHT_BRACE:   {nil, nil, PrecNone},
		token.COMMA:         {nil, nil, PrecNone},
		token.DOT:           {nil, (*Parser).dot, PrecCall},
		token.MINUS:         {(*Parser).unary, (*Parser).binary, PrecTerm},
		token.PLUS:          {nil, (*Parser).binary, PrecTerm},
		token.SEMICOLON:     {nil, nil, PrecNone},
		token.SLASH:         {nil, (*Parser).binary, PrecFactor},
		token.STAR:          {nil, (*Parser).binary, PrecFactor},
		token.BANG:          {(*Parser).unary, nil, PrecNone},
		token.BANG_EQUAL:    {nil, (*Parser).binary, PrecEquality},
		token.EQUAL:         {nil, nil, PrecNone},
		token.EQUAL_EQUAL:   {nil, (*Parser).binary, PrecEquality},
		token.GREATER:       {nil, (*Parser).binary, PrecComparison},
		token.GREATER_EQUAL: {nil, (*Parser).binary, PrecComparison},
		token.LESS:          {nil, (*Parser).binary, PrecComparison},
		token.LESS_EQUAL:    {nil, (*Parser).binary, PrecComparison},
		token.IDENTIFIER:    {(*Parser).variable, nil, PrecNone},
		token.STRING:        {(*Parser).str, nil, PrecNone},
		token.NUMBER:        {(*Parser).number, nil, PrecNone},
		token.AND:           {nil, (*Parser).and, PrecAnd},
		token.CLASS:         {nil, nil, PrecNone},
		token.ELSE:          {nil, nil, PrecNone},
		token.FALSE:         {(*Parser).literal, nil, PrecNone},
		token.FOR:           {nil, nil, PrecNone},
		token.FUN:           {nil, nil, PrecNone},
		token.IF:            {nil, nil, PrecNone},
		token.NIL:           {(*Parser).literal, nil, PrecNone},
		token.OR:            {nil, (*Parser).or, PrecOr},
		token.PRINT:         {nil, nil, PrecNone},
		token.RETURN:        {nil, nil, PrecNone},
		token.SUPER:         {(*Parser).super, nil, PrecNone},
		token.THIS:          {(*Parser).this, nil, PrecNone},
		token.TRUE:          {(*Parser).literal, nil, PrecNone},
		token.VAR:           {nil, nil, PrecNone},
		token.WHILE:         {nil, nil, PrecNone},
		token.ERROR:         {nil, nil, PrecNone},
		token.EOF:           {nil, nil, PrecNone},
	}
}

func getRule(typ token.Type) *ParseRule {
	return &rules[typ]
}

// FunctionType distinguishes the kinds of function bodies being compiled.
type FunctionType int

const (
	TypeScript FunctionType = iota
	TypeFunction
	TypeMethod
	TypeInitializer
)

// Local represents a local variable during compilation. Depth is -1 between
// declaration and initialization, which is what forbids `var x = x;`.
type Local struct {
	Name       string
	Depth      int
	IsCaptured bool
}

// Upvalue records how a nested function reaches a captured variable: a slot
// in the enclosing function (IsLocal) or an upvalue of the enclosing
// function.
type Upvalue struct {
	Index   uint8
	IsLocal bool
}

// Compiler holds the per-function compilation state. Nested function
// declarations push a new Compiler linked through enclosing. Slot 0 is
// reserved for the callee (`this` inside methods), so a function can declare
// MaxLocals further locals.
type Compiler struct {
	enclosing *Compiler
	function  *ObjFunction
	funcType  FunctionType

	locals     [config.MaxLocals + 1]Local
	localCount int
	upvalues   [config.MaxUpvalues]Upvalue
	scopeDepth int
}

// ClassCompiler tracks the innermost class being compiled, so `this` and
// `super` outside a class are compile errors.
type ClassCompiler struct {
	enclosing     *ClassCompiler
	hasSuperclass bool
}

// Parser drives the scanner with one token of lookahead and emits bytecode
// as it goes. There is no AST.
type Parser struct {
	vm *VM
	lx *lexer.Lexer

	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool

	compiler      *Compiler
	classCompiler *ClassCompiler
}

// compile turns source into the top-level function, or nil if any compile
// error was reported.
func (vm *VM) compile(source string) *ObjFunction {
	p := &Parser{vm: vm, lx: lexer.New(source)}
	p.initCompiler(&Compiler{}, TypeScript)

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}

	fn := p.endCompiler()
	if p.hadError {
		return nil
	}
	return fn
}

// initCompiler links a new compiler into the chain and allocates its
// function. The chain is registered with the VM before the allocation so
// the GC can reach every function under construction.
func (p *Parser) initCompiler(compiler *Compiler, funcType FunctionType) {
	compiler.enclosing = p.compiler
	compiler.funcType = funcType
	p.compiler = compiler
	p.vm.compiler = compiler

	compiler.function = p.vm.newFunction()
	if funcType != TypeScript {
		compiler.function.Name = p.vm.internString(p.previous.Lexeme)
	}

	// slot 0 holds the callee; inside methods it is addressable as `this`
	local := &compiler.locals[compiler.localCount]
	compiler.localCount++
	local.Depth = 0
	if funcType == TypeMethod || funcType == TypeInitializer {
		local.Name = "this"
	}
}

func (p *Parser) endCompiler() *ObjFunction {
	p.emitReturn()
	fn := p.compiler.function

	if p.vm.options.PrintCode && !p.hadError {
		fmt.Fprint(p.vm.stderr, Disassemble(fn.Chunk, fn.String()))
	}

	p.compiler = p.compiler.enclosing
	p.vm.compiler = p.compiler
	return fn
}

// Token plumbing

func (p *Parser) advance() {
	p.previous = p.current

	for {
		p.current = p.lx.ScanToken()
		if p.current.Type != token.ERROR {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *Parser) consume(typ token.Type, msg string) {
	if p.current.Type == typ {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

func (p *Parser) check(typ token.Type) bool {
	return p.current.Type == typ
}

func (p *Parser) match(typ token.Type) bool {
	if !p.check(typ) {
		return false
	}
	p.advance()
	return true
}

// Error reporting

func (p *Parser) errorAtCurrent(msg string) {
	p.errorAt(p.current, msg)
}

func (p *Parser) error(msg string) {
	p.errorAt(p.previous, msg)
}

func (p *Parser) errorAt(tok token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true

	fmt.Fprintf(p.vm.stderr, "[line %d] Error", tok.Line)
	switch tok.Type {
	case token.EOF:
		fmt.Fprint(p.vm.stderr, " at end")
	case token.ERROR:
		// the message already describes the problem
	default:
		fmt.Fprintf(p.vm.stderr, " at '%s'", tok.Lexeme)
	}
	fmt.Fprintf(p.vm.stderr, ": %s\n", msg)

	p.hadError = true
}

// synchronize skips tokens until a statement boundary, so one mistake
// doesn't cascade into a pile of confusing errors.
func (p *Parser) synchronize() {
	p.panicMode = false

	for p.current.Type != token.EOF {
		if p.previous.Type == token.SEMICOLON {
			return
		}
		switch p.current.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

// Emit helpers

func (p *Parser) currentChunk() *Chunk {
	return p.compiler.function.Chunk
}

func (p *Parser) emitByte(b byte) {
	p.currentChunk().Write(b, p.previous.Line)
}

func (p *Parser) emitOp(op Opcode) {
	p.emitByte(byte(op))
}

func (p *Parser) emitOps(op Opcode, operand byte) {
	p.emitOp(op)
	p.emitByte(operand)
}

func (p *Parser) emitLoop(loopStart int) {
	p.emitOp(OP_LOOP)

	offset := p.currentChunk().Len() - loopStart + 2
	if offset > config.MaxJump {
		p.error("Loop body too large.")
	}

	p.emitByte(byte(offset >> 8))
	p.emitByte(byte(offset))
}

// emitJump writes op with a placeholder 16-bit operand and returns the
// patch site.
func (p *Parser) emitJump(op Opcode) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return p.currentChunk().Len() - 2
}

func (p *Parser) patchJump(offset int) {
	// -2 adjusts for the operand bytes themselves
	jump := p.currentChunk().Len() - offset - 2
	if jump > config.MaxJump {
		p.error("Too much code to jump over.")
	}

	p.currentChunk().Code[offset] = byte(jump >> 8)
	p.currentChunk().Code[offset+1] = byte(jump)
}

func (p *Parser) emitReturn() {
	if p.compiler.funcType == TypeInitializer {
		p.emitOps(OP_GET_LOCAL, 0)
	} else {
		p.emitOp(OP_NIL)
	}
	p.emitOp(OP_RETURN)
}

func (p *Parser) makeConstant(value Value) byte {
	constant := p.currentChunk().AddConstant(value)
	if constant > config.MaxConstants-1 {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return byte(constant)
}

func (p *Parser) emitConstant(value Value) {
	p.emitOps(OP_CONSTANT, p.makeConstant(value))
}

// Scopes and variables

func (p *Parser) beginScope() {
	p.compiler.scopeDepth++
}

func (p *Parser) endScope() {
	c := p.compiler
	c.scopeDepth--

	for c.localCount > 0 && c.locals[c.localCount-1].Depth > c.scopeDepth {
		if c.locals[c.localCount-1].IsCaptured {
			p.emitOp(OP_CLOSE_UPVALUE)
		} else {
			p.emitOp(OP_POP)
		}
		c.localCount--
	}
}

func (p *Parser) identifierConstant(name token.Token) byte {
	return p.makeConstant(ObjVal(p.vm.internString(name.Lexeme)))
}

func (p *Parser) addLocal(name token.Token) {
	c := p.compiler
	if c.localCount == len(c.locals) {
		p.error("Too many local variables in function.")
		return
	}

	c.locals[c.localCount] = Local{Name: name.Lexeme, Depth: -1}
	c.localCount++
}

func (p *Parser) declareVariable() {
	c := p.compiler
	if c.scopeDepth == 0 {
		return
	}

	name := p.previous
	for i := c.localCount - 1; i >= 0; i-- {
		local := &c.locals[i]
		if local.Depth != -1 && local.Depth < c.scopeDepth {
			break
		}
		if local.Name == name.Lexeme {
			p.error("Already a variable with this name in this scope.")
		}
	}

	p.addLocal(name)
}

func (p *Parser) parseVariable(errMsg string) byte {
	p.consume(token.IDENTIFIER, errMsg)

	p.declareVariable()
	if p.compiler.scopeDepth > 0 {
		return 0
	}

	return p.identifierConstant(p.previous)
}

func (p *Parser) markInitialized() {
	c := p.compiler
	if c.scopeDepth == 0 {
		return
	}
	c.locals[c.localCount-1].Depth = c.scopeDepth
}

func (p *Parser) defineVariable(global byte) {
	if p.compiler.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitOps(OP_DEFINE_GLOBAL, global)
}

func (p *Parser) resolveLocal(c *Compiler, name token.Token) int {
	for i := c.localCount - 1; i >= 0; i-- {
		local := &c.locals[i]
		if local.Name == name.Lexeme {
			if local.Depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue walks outward through enclosing compilers. A hit in an
// immediately enclosing function captures that local; deeper hits chain an
// upvalue through every compiler in between.
func (p *Parser) resolveUpvalue(c *Compiler, name token.Token) int {
	if c.enclosing == nil {
		return -1
	}

	if local := p.resolveLocal(c.enclosing, name); local != -1 {
		c.enclosing.locals[local].IsCaptured = true
		return p.addUpvalue(c, uint8(local), true)
	}

	if upvalue := p.resolveUpvalue(c.enclosing, name); upvalue != -1 {
		return p.addUpvalue(c, uint8(upvalue), false)
	}

	return -1
}

func (p *Parser) addUpvalue(c *Compiler, index uint8, isLocal bool) int {
	upvalueCount := c.function.UpvalueCount

	for i := 0; i < upvalueCount; i++ {
		upvalue := &c.upvalues[i]
		if upvalue.Index == index && upvalue.IsLocal == isLocal {
			return i
		}
	}

	if upvalueCount == config.MaxUpvalues {
		p.error("Too many closure variables in function.")
		return 0
	}

	c.upvalues[upvalueCount] = Upvalue{Index: index, IsLocal: isLocal}
	c.function.UpvalueCount++
	return upvalueCount
}

func (p *Parser) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp Opcode
	arg := p.resolveLocal(p.compiler, name)

	switch {
	case arg != -1:
		getOp, setOp = OP_GET_LOCAL, OP_SET_LOCAL
	default:
		if arg = p.resolveUpvalue(p.compiler, name); arg != -1 {
			getOp, setOp = OP_GET_UPVALUE, OP_SET_UPVALUE
		} else {
			arg = int(p.identifierConstant(name))
			getOp, setOp = OP_GET_GLOBAL, OP_SET_GLOBAL
		}
	}

	if canAssign && p.match(token.EQUAL) {
		p.expression()
		p.emitOps(setOp, byte(arg))
	} else {
		p.emitOps(getOp, byte(arg))
	}
}

func syntheticToken(text string) token.Token {
	return token.Token{Type: token.IDENTIFIER, Lexeme: text}
}

// Declarations

func (p *Parser) declaration() {
	switch {
	case p.match(token.CLASS):
		p.classDeclaration()
	case p.match(token.FUN):
		p.funDeclaration()
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}
}

func (p *Parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")

	if p.match(token.EQUAL) {
		p.expression()
	} else {
		p.emitOp(OP_NIL)
	}
	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")

	p.defineVariable(global)
}

func (p *Parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	// eagerly initialized so the body can refer to itself
	p.markInitialized()
	p.function(TypeFunction)
	p.defineVariable(global)
}

func (p *Parser) function(funcType FunctionType) {
	compiler := &Compiler{}
	p.initCompiler(compiler, funcType)
	p.beginScope()

	p.consume(token.LEFT_PAREN, "Expect '(' after function name.")
	if !p.check(token.RIGHT_PAREN) {
		for {
			compiler.function.Arity++
			if compiler.function.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := p.parseVariable("Expect parameter name.")
			p.defineVariable(constant)

			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")
	p.consume(token.LEFT_BRACE, "Expect '{' before function body.")
	p.block()

	fn := p.endCompiler()
	p.emitOps(OP_CLOSURE, p.makeConstant(ObjVal(fn)))

	for i := 0; i < fn.UpvalueCount; i++ {
		if compiler.upvalues[i].IsLocal {
			p.emitByte(1)
		} else {
			p.emitByte(0)
		}
		p.emitByte(compiler.upvalues[i].Index)
	}
}

func (p *Parser) classDeclaration() {
	p.consume(token.IDENTIFIER, "Expect class name.")
	className := p.previous
	nameConstant := p.identifierConstant(p.previous)
	p.declareVariable()

	p.emitOps(OP_CLASS, nameConstant)
	p.defineVariable(nameConstant)

	classCompiler := &ClassCompiler{enclosing: p.classCompiler}
	p.classCompiler = classCompiler

	if p.match(token.LESS) {
		p.consume(token.IDENTIFIER, "Expect superclass name.")
		p.variable(false)

		if className.Lexeme == p.previous.Lexeme {
			p.error("A class can't inherit from itself.")
		}

		// the superclass lives in a scoped local named `super`, captured
		// as an upvalue by methods that need it
		p.beginScope()
		p.addLocal(syntheticToken("super"))
		p.defineVariable(0)

		p.namedVariable(className, false)
		p.emitOp(OP_INHERIT)
		classCompiler.hasSuperclass = true
	}

	p.namedVariable(className, false)
	p.consume(token.LEFT_BRACE, "Expect '{' before class body.")
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		p.method()
	}
	p.consume(token.RIGHT_BRACE, "Expect '}' after class body.")
	p.emitOp(OP_POP)

	if classCompiler.hasSuperclass {
		p.endScope()
	}

	p.classCompiler = p.classCompiler.enclosing
}

func (p *Parser) method() {
	p.consume(token.IDENTIFIER, "Expect method name.")
	constant := p.identifierConstant(p.previous)

	funcType := TypeMethod
	if p.previous.Lexeme == config.InitMethodName {
		funcType = TypeInitializer
	}

	p.function(funcType)
	p.emitOps(OP_METHOD, constant)
}

// Statements

func (p *Parser) statement() {
	switch {
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.RETURN):
		p.returnStatement()
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.LEFT_BRACE):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *Parser) block() {
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RIGHT_BRACE, "Expect '}' after block.")
}

func (p *Parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	p.emitOp(OP_POP)
}

func (p *Parser) printStatement() {
	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after value.")
	p.emitOp(OP_PRINT)
}

func (p *Parser) returnStatement() {
	if p.compiler.funcType == TypeScript {
		p.error("Can't return from top-level code.")
	}

	if p.match(token.SEMICOLON) {
		p.emitReturn()
		return
	}

	if p.compiler.funcType == TypeInitializer {
		p.error("Can't return a value from an initializer.")
	}
	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after return value.")
	p.emitOp(OP_RETURN)
}

func (p *Parser) ifStatement() {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	// both branch heads pop the condition, so stack height is unchanged
	// whether or not the branch ran
	thenJump := p.emitJump(OP_JUMP_IF_FALSE)
	p.emitOp(OP_POP)
	p.statement()
	elseJump := p.emitJump(OP_JUMP)

	p.patchJump(thenJump)
	p.emitOp(OP_POP)

	if p.match(token.ELSE) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *Parser) whileStatement() {
	loopStart := p.currentChunk().Len()
	p.consume(token.LEFT_PAREN, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	exitJump := p.emitJump(OP_JUMP_IF_FALSE)
	p.emitOp(OP_POP)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(OP_POP)
}

// forStatement desugars into initializer + while with an increment clause
// tucked behind a pair of jumps.
func (p *Parser) forStatement() {
	p.beginScope()
	p.consume(token.LEFT_PAREN, "Expect '(' after 'for'.")

	switch {
	case p.match(token.SEMICOLON):
		// no initializer
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := p.currentChunk().Len()
	exitJump := -1
	if !p.match(token.SEMICOLON) {
		p.expression()
		p.consume(token.SEMICOLON, "Expect ';' after loop condition.")

		exitJump = p.emitJump(OP_JUMP_IF_FALSE)
		p.emitOp(OP_POP)
	}

	if !p.match(token.RIGHT_PAREN) {
		bodyJump := p.emitJump(OP_JUMP)
		incrementStart := p.currentChunk().Len()
		p.expression()
		p.emitOp(OP_POP)
		p.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(OP_POP)
	}

	p.endScope()
}

// Expressions

func (p *Parser) expression() {
	p.parsePrecedence(PrecAssignment)
}

// parsePrecedence is the heart of the Pratt parser: consume a prefix rule,
// then fold infix rules while their precedence is at least prec. Assignment
// is only legal when parsing at assignment precedence or lower, which is
// what rejects targets like `a + b = c`.
func (p *Parser) parsePrecedence(prec Precedence) {
	p.advance()
	prefix := getRule(p.previous.Type).prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}

	canAssign := prec <= PrecAssignment
	prefix(p, canAssign)

	for prec <= getRule(p.current.Type).precedence {
		p.advance()
		infix := getRule(p.previous.Type).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(token.EQUAL) {
		p.error("Invalid assignment target.")
	}
}

func (p *Parser) grouping(canAssign bool) {
	p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
}

func (p *Parser) number(canAssign bool) {
	value, _ := strconv.ParseFloat(p.previous.Lexeme, 64)
	p.emitConstant(NumberVal(value))
}

func (p *Parser) str(canAssign bool) {
	lexeme := p.previous.Lexeme
	// trim the surrounding quotes
	s := p.vm.internString(lexeme[1 : len(lexeme)-1])
	p.emitConstant(ObjVal(s))
}

func (p *Parser) literal(canAssign bool) {
	switch p.previous.Type {
	case token.FALSE:
		p.emitOp(OP_FALSE)
	case token.NIL:
		p.emitOp(OP_NIL)
	case token.TRUE:
		p.emitOp(OP_TRUE)
	}
}

func (p *Parser) variable(canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

func (p *Parser) this(canAssign bool) {
	if p.classCompiler == nil {
		p.error("Can't use 'this' outside of a class.")
		return
	}
	p.variable(false)
}

func (p *Parser) super(canAssign bool) {
	if p.classCompiler == nil {
		p.error("Can't use 'super' outside of a class.")
	} else if !p.classCompiler.hasSuperclass {
		p.error("Can't use 'super' in a class with no superclass.")
	}

	p.consume(token.DOT, "Expect '.' after 'super'.")
	p.consume(token.IDENTIFIER, "Expect superclass method name.")
	name := p.identifierConstant(p.previous)

	p.namedVariable(syntheticToken("this"), false)
	if p.match(token.LEFT_PAREN) {
		argCount := p.argumentList()
		p.namedVariable(syntheticToken("super"), false)
		p.emitOps(OP_SUPER_INVOKE, name)
		p.emitByte(argCount)
	} else {
		p.namedVariable(syntheticToken("super"), false)
		p.emitOps(OP_GET_SUPER, name)
	}
}

func (p *Parser) unary(canAssign bool) {
	opType := p.previous.Type

	p.parsePrecedence(PrecUnary)

	switch opType {
	case token.BANG:
		p.emitOp(OP_NOT)
	case token.MINUS:
		p.emitOp(OP_NEGATE)
	}
}

func (p *Parser) binary(canAssign bool) {
	opType := p.previous.Type
	rule := getRule(opType)
	p.parsePrecedence(rule.precedence + 1)

	switch opType {
	case token.BANG_EQUAL:
		p.emitOp(OP_EQUAL)
		p.emitOp(OP_NOT)
	case token.EQUAL_EQUAL:
		p.emitOp(OP_EQUAL)
	case token.GREATER:
		p.emitOp(OP_GREATER)
	case token.GREATER_EQUAL:
		p.emitOp(OP_LESS)
		p.emitOp(OP_NOT)
	case token.LESS:
		p.emitOp(OP_LESS)
	case token.LESS_EQUAL:
		p.emitOp(OP_GREATER)
		p.emitOp(OP_NOT)
	case token.PLUS:
		p.emitOp(OP_ADD)
	case token.MINUS:
		p.emitOp(OP_SUBTRACT)
	case token.STAR:
		p.emitOp(OP_MULTIPLY)
	case token.SLASH:
		p.emitOp(OP_DIVIDE)
	}
}

func (p *Parser) and(canAssign bool) {
	endJump := p.emitJump(OP_JUMP_IF_FALSE)

	p.emitOp(OP_POP)
	p.parsePrecedence(PrecAnd)

	p.patchJump(endJump)
}

func (p *Parser) or(canAssign bool) {
	elseJump := p.emitJump(OP_JUMP_IF_FALSE)
	endJump := p.emitJump(OP_JUMP)

	p.patchJump(elseJump)
	p.emitOp(OP_POP)

	p.parsePrecedence(PrecOr)
	p.patchJump(endJump)
}

func (p *Parser) call(canAssign bool) {
	argCount := p.argumentList()
	p.emitOps(OP_CALL, argCount)
}

func (p *Parser) dot(canAssign bool) {
	p.consume(token.IDENTIFIER, "Expect property name after '.'.")
	name := p.identifierConstant(p.previous)

	if canAssign && p.match(token.EQUAL) {
		p.expression()
		p.emitOps(OP_SET_PROPERTY, name)
	} else if p.match(token.LEFT_PAREN) {
		argCount := p.argumentList()
		p.emitOps(OP_INVOKE, name)
		p.emitByte(argCount)
	} else {
		p.emitOps(OP_GET_PROPERTY, name)
	}
}

func (p *Parser) argumentList() byte {
	var argCount byte
	if !p.check(token.RIGHT_PAREN) {
		for {
			p.expression()
			if argCount == 255 {
				p.error("Can't have more than 255 arguments.")
			}
			argCount++

			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return argCount
}
