package grammar

import "github.com/alecthomas/participle/v2/lexer"

type File struct {
	Pos     lexer.Position
	Imports []*ImportDecl `@@*`
	Class   *ClassDecl    `@@`
}

type ImportDecl struct {
	Pos  lexer.Position
	Path []string `"import" @Ident { "." @Ident } ";"`
}

type ClassDecl struct {
	Pos     lexer.Position
	Name    string    `"class" @Ident`
	Super   string    `[ "extends" @Ident ] "{"`
	Members []*Member `@@* "}"`
}

type Member struct {
	Method *MethodDecl `  @@`
	Field  *VarDecl    `| @@`
}

type TypeRef struct {
	Pos     lexer.Position
	Name    string `@("int" | "boolean" | "void" | Ident)`
	Array   bool   `[ @("[" "]")`
	Varargs bool   `| @"..." ]`
}

type VarDecl struct {
	Pos  lexer.Position
	Type *TypeRef `@@`
	Name string   `@Ident ";"`
}

type Param struct {
	Pos  lexer.Position
	Type *TypeRef `@@`
	Name string   `@Ident`
}

type MethodDecl struct {
	Pos    lexer.Position
	Public bool         `@"public"?`
	Static bool         `@"static"?`
	Return *TypeRef     `@@`
	Name   string       `@Ident "("`
	Params []*Param     `[ @@ { "," @@ } ] ")" "{"`
	Locals []*VarDecl   `@@*`
	Body   []*Statement `@@* "}"`
}

type Statement struct {
	Pos    lexer.Position
	Block  *Block      `  @@`
	If     *IfStmt     `| @@`
	While  *WhileStmt  `| @@`
	Return *ReturnStmt `| @@`
	Simple *SimpleStmt `| @@`
}

type Block struct {
	Pos   lexer.Position
	Open  bool         `@"{"`
	Stmts []*Statement `@@* "}"`
}

type IfStmt struct {
	Pos  lexer.Position
	Cond *Expr      `"if" "(" @@ ")"`
	Then *Statement `@@`
	Else *Statement `[ "else" @@ ]`
}

type WhileStmt struct {
	Pos  lexer.Position
	Cond *Expr      `"while" "(" @@ ")"`
	Body *Statement `@@`
}

type ReturnStmt struct {
	Pos   lexer.Position
	Open  bool  `@"return"`
	Value *Expr `[ @@ ] ";"`
}

// SimpleStmt is either an assignment (Value set) or an expression statement
type SimpleStmt struct {
	Pos    lexer.Position
	Target *Expr `@@`
	Value  *Expr `[ "=" @@ ] ";"`
}

type Expr struct {
	Pos   lexer.Position
	Left  *Comparison   `@@`
	Right []*Comparison `{ "&&" @@ }`
}

type Comparison struct {
	Pos   lexer.Position
	Left  *Additive `@@`
	Op    string    `[ @("<=" | ">=" | "==" | "!=" | "<" | ">")`
	Right *Additive `  @@ ]`
}

type Additive struct {
	Pos  lexer.Position
	Left *Multiplicative `@@`
	Rest []*AddOp        `@@*`
}

type AddOp struct {
	Pos   lexer.Position
	Op    string          `@("+" | "-")`
	Right *Multiplicative `@@`
}

type Multiplicative struct {
	Pos  lexer.Position
	Left *Unary   `@@`
	Rest []*MulOp `@@*`
}

type MulOp struct {
	Pos   lexer.Position
	Op    string `@("*" | "/")`
	Right *Unary `@@`
}

type Unary struct {
	Pos     lexer.Position
	Not     *Unary   `  "!" @@`
	Postfix *Postfix `| @@`
}

type Postfix struct {
	Pos     lexer.Position
	Primary *Primary     `@@`
	Ops     []*PostfixOp `@@*`
}

// PostfixOp is an index, a .length access or a method call
type PostfixOp struct {
	Pos   lexer.Position
	Index *Expr     `  "[" @@ "]"`
	Name  string    `| "." @Ident`
	Call  *CallArgs `  @@?`
}

type CallArgs struct {
	Pos  lexer.Position
	Open bool    `@"("`
	Args []*Expr `[ @@ { "," @@ } ] ")"`
}

type Primary struct {
	Pos       lexer.Position
	Number    *string    `  @Integer`
	True      bool       `| @"true"`
	False     bool       `| @"false"`
	This      bool       `| @"this"`
	NewArray  *NewArray  `| @@`
	NewObject *NewObject `| @@`
	Array     *ArrayLit  `| @@`
	Ident     *string    `| @Ident`
	Parens    *Expr      `| "(" @@ ")"`
}

type NewArray struct {
	Pos    lexer.Position
	Elem   string `"new" @("int" | "boolean" | Ident) "["`
	Length *Expr  `@@ "]"`
}

type NewObject struct {
	Pos   lexer.Position
	Class string  `"new" @Ident "("`
	Args  []*Expr `[ @@ { "," @@ } ] ")"`
}

type ArrayLit struct {
	Pos      lexer.Position
	Open     bool    `@"["`
	Elements []*Expr `[ @@ { "," @@ } ] "]"`
}
