package shadergen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/nv2a/internal/vsh"
)

// EntryPoint is the name of the generated vertex entry point.
const EntryPoint = "vs_main"

// ErrEmptyShader is returned for shaders without instructions.
var ErrEmptyShader = errors.New("shadergen: shader has no instructions")

// oPos is stored in r12 so that reads of r12 observe position writes.
const posRegister = 12

var outputVars = [...]struct {
	addr     int16
	name     string
	location int
	init     string
}{
	{vsh.OutD0, "oD0", 0, "vec4<f32>(0.0, 0.0, 0.0, 1.0)"},
	{vsh.OutD1, "oD1", 1, "vec4<f32>(0.0, 0.0, 0.0, 1.0)"},
	{vsh.OutFog, "oFog", 2, "vec4<f32>(0.0)"},
	{vsh.OutPts, "oPts", 3, "vec4<f32>(0.0)"},
	{vsh.OutB0, "oB0", 4, "vec4<f32>(0.0, 0.0, 0.0, 1.0)"},
	{vsh.OutB1, "oB1", 5, "vec4<f32>(0.0, 0.0, 0.0, 1.0)"},
	{vsh.OutTex0, "oT0", 6, "vec4<f32>(0.0, 0.0, 0.0, 1.0)"},
	{vsh.OutTex1, "oT1", 7, "vec4<f32>(0.0, 0.0, 0.0, 1.0)"},
	{vsh.OutTex2, "oT2", 8, "vec4<f32>(0.0, 0.0, 0.0, 1.0)"},
	{vsh.OutTex3, "oT3", 9, "vec4<f32>(0.0, 0.0, 0.0, 1.0)"},
}

const helpers = `fn x_rcp(s: f32) -> vec4<f32> {
    return vec4<f32>(1.0 / s);
}

fn x_rcc(s: f32) -> vec4<f32> {
    var t = 1.0 / s;
    if (t > 0.0) {
        t = clamp(t, 5.42101e-20, 1.84467e19);
    } else {
        t = clamp(t, -1.84467e19, -5.42101e-20);
    }
    return vec4<f32>(t);
}

fn x_rsq(s: f32) -> vec4<f32> {
    return vec4<f32>(inverseSqrt(abs(s)));
}

fn x_expp(s: f32) -> vec4<f32> {
    let f = floor(s);
    return vec4<f32>(exp2(f), s - f, exp2(s), 1.0);
}

fn x_logp(s: f32) -> vec4<f32> {
    let a = abs(s);
    let l = log2(a);
    let f = floor(l);
    return vec4<f32>(f, a / exp2(f), l, 1.0);
}

fn x_lit(s: vec4<f32>) -> vec4<f32> {
    let e = 1.0 / 256.0;
    let p = clamp(s.w, -(128.0 - e), 128.0 - e);
    var r = vec4<f32>(1.0, max(s.x, 0.0), 0.0, 1.0);
    if (s.x > 0.0) {
        r.z = pow(max(s.y, 0.0), p);
    }
    return r;
}

fn x_dst(a: vec4<f32>, b: vec4<f32>) -> vec4<f32> {
    return vec4<f32>(1.0, a.y * b.y, a.z, b.w);
}

fn x_slt(a: vec4<f32>, b: vec4<f32>) -> vec4<f32> {
    return select(vec4<f32>(0.0), vec4<f32>(1.0), a < b);
}

fn x_sge(a: vec4<f32>, b: vec4<f32>) -> vec4<f32> {
    return select(vec4<f32>(0.0), vec4<f32>(1.0), a >= b);
}
`

type generator struct {
	s       *vsh.Shader
	body    strings.Builder
	consts  string
	inputs  [vsh.NumInputs]bool
	usesA0  bool
	writesC bool
	tmp     int
}

// Generate translates s into a WGSL vertex shader.
func Generate(s *vsh.Shader) (string, error) {
	if s == nil || len(s.Instructions) == 0 {
		return "", ErrEmptyShader
	}

	g := &generator{s: s, consts: "consts.c"}
	for i := range s.Instructions {
		in := &s.Instructions[i]
		if in.Output.Type == vsh.OutputC {
			g.writesC = true
		}
		if in.IndexesWithA0X || in.MAC == vsh.MACArl {
			g.usesA0 = true
		}
	}
	if g.writesC {
		// Programs may write constant memory, so they work on a copy.
		g.consts = "c"
	}

	for i := range s.Instructions {
		g.instruction(&s.Instructions[i])
	}

	var b strings.Builder
	g.writeDeclarations(&b)
	g.writeMain(&b)
	return b.String(), nil
}

func (g *generator) writeDeclarations(b *strings.Builder) {
	fmt.Fprintf(b, "struct Constants {\n    c: array<vec4<f32>, %d>,\n}\n\n", RegisterCount)
	b.WriteString("@group(0) @binding(0) var<uniform> consts: Constants;\n\n")

	b.WriteString("struct VertexInput {\n")
	for i := 0; i < vsh.NumInputs; i++ {
		fmt.Fprintf(b, "    @location(%d) v%d: vec4<f32>,\n", i, i)
	}
	b.WriteString("}\n\n")

	b.WriteString("struct VertexOutput {\n    @builtin(position) pos: vec4<f32>,\n")
	for _, o := range outputVars {
		fmt.Fprintf(b, "    @location(%d) %s: vec4<f32>,\n", o.location, strings.ToLower(o.name[1:]))
	}
	b.WriteString("}\n\n")

	b.WriteString(helpers)
	b.WriteString("\n")
}

func (g *generator) writeMain(b *strings.Builder) {
	fmt.Fprintf(b, "@vertex\nfn %s(vin: VertexInput) -> VertexOutput {\n", EntryPoint)
	if g.writesC {
		b.WriteString("    var c = consts.c;\n")
	}
	if g.usesA0 {
		b.WriteString("    var a0: i32 = 0;\n")
	}

	for i, used := range g.inputs {
		if !used {
			continue
		}
		absent, ac := FlagRegister(RegisterAbsent, i)
		swz, sc := FlagRegister(RegisterSwizzle, i)
		fmt.Fprintf(b, "    var v%d = vin.v%d;\n", i, i)
		fmt.Fprintf(b, "    if (consts.c[%d].%c > 0.0) {\n        v%d = consts.c[%d];\n    }\n", absent, "xyzw"[ac], i, RegisterDefaults+i)
		fmt.Fprintf(b, "    if (consts.c[%d].%c > 0.0) {\n        v%d = v%d.zyxw;\n    }\n", swz, "xyzw"[sc], i, i)
	}

	for r := 0; r < posRegister; r++ {
		fmt.Fprintf(b, "    var r%d = vec4<f32>(0.0);\n", r)
	}
	fmt.Fprintf(b, "    var r%d = vec4<f32>(0.0, 0.0, 0.0, 1.0);\n", posRegister)
	for _, o := range outputVars {
		fmt.Fprintf(b, "    var %s = %s;\n", o.name, o.init)
	}
	b.WriteString("\n")

	b.WriteString(g.body.String())

	b.WriteString("\n    var res: VertexOutput;\n")
	fmt.Fprintf(b, "    let pos = r%d;\n", posRegister)
	fmt.Fprintf(b, "    res.pos = vec4<f32>((pos.xyz - consts.c[%d].xyz) / consts.c[%d].xyz * pos.w, pos.w);\n",
		RegisterViewportOffset, RegisterViewportScale)
	for _, o := range outputVars {
		fmt.Fprintf(b, "    res.%s = %s;\n", strings.ToLower(o.name[1:]), o.name)
	}
	b.WriteString("    return res;\n}\n")
}

func (g *generator) instruction(in *vsh.Instruction) {
	ops := in.Operands()
	args := make([]string, len(ops))
	for i, p := range ops {
		args[i] = g.param(p, in.IndexesWithA0X)
	}
	if len(args) == 0 {
		slogger().Warn("shadergen: instruction without operands", "instruction", in.String())
		return
	}

	if in.MAC == vsh.MACArl {
		fmt.Fprintf(&g.body, "    // %s\n", in.String())
		fmt.Fprintf(&g.body, "    a0 = i32(floor((%s).x));\n", args[0])
		return
	}

	expr, ok := g.expression(in, args)
	if !ok {
		slogger().Warn("shadergen: instruction has no translation", "instruction", in.String())
		return
	}
	dest, ok := g.destination(in.Output)
	if !ok {
		return
	}

	fmt.Fprintf(&g.body, "    // %s\n", in.String())
	if in.Output.Mask == vsh.MaskXYZW {
		fmt.Fprintf(&g.body, "    %s = %s;\n", dest, expr)
		return
	}
	t := fmt.Sprintf("t%d", g.tmp)
	g.tmp++
	fmt.Fprintf(&g.body, "    let %s = %s;\n", t, expr)
	for i, ch := range "xyzw" {
		if in.Output.Mask&(vsh.MaskX>>i) != 0 {
			fmt.Fprintf(&g.body, "    %s.%c = %s.%c;\n", dest, ch, t, ch)
		}
	}
}

// expression returns the vec4 result of in. MAC operands are A, B, C in
// order of use; ILU operations read their single C operand.
func (g *generator) expression(in *vsh.Instruction, args []string) (string, bool) {
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return "vec4<f32>(0.0)"
	}
	a, b, c := arg(0), arg(1), arg(2)

	switch in.MAC {
	case vsh.MACNop:
	case vsh.MACMov:
		return a, true
	case vsh.MACMul:
		return fmt.Sprintf("(%s * %s)", a, b), true
	case vsh.MACAdd:
		// ADD reads A and C.
		return fmt.Sprintf("(%s + %s)", a, arg(1)), true
	case vsh.MACMad:
		return fmt.Sprintf("(%s * %s + %s)", a, b, c), true
	case vsh.MACDp3:
		return fmt.Sprintf("vec4<f32>(dot((%s).xyz, (%s).xyz))", a, b), true
	case vsh.MACDph:
		return fmt.Sprintf("vec4<f32>(dot((%s).xyz, (%s).xyz) + (%s).w)", a, b, b), true
	case vsh.MACDp4:
		return fmt.Sprintf("vec4<f32>(dot(%s, %s))", a, b), true
	case vsh.MACDst:
		return fmt.Sprintf("x_dst(%s, %s)", a, b), true
	case vsh.MACMin:
		return fmt.Sprintf("min(%s, %s)", a, b), true
	case vsh.MACMax:
		return fmt.Sprintf("max(%s, %s)", a, b), true
	case vsh.MACSlt:
		return fmt.Sprintf("x_slt(%s, %s)", a, b), true
	case vsh.MACSge:
		return fmt.Sprintf("x_sge(%s, %s)", a, b), true
	default:
		return "", false
	}

	switch in.ILU {
	case vsh.ILUMov:
		return a, true
	case vsh.ILURcp:
		return fmt.Sprintf("x_rcp((%s).x)", a), true
	case vsh.ILURcc:
		return fmt.Sprintf("x_rcc((%s).x)", a), true
	case vsh.ILURsq:
		return fmt.Sprintf("x_rsq((%s).x)", a), true
	case vsh.ILUExp:
		return fmt.Sprintf("x_expp((%s).x)", a), true
	case vsh.ILULog:
		return fmt.Sprintf("x_logp((%s).x)", a), true
	case vsh.ILULit:
		return fmt.Sprintf("x_lit(%s)", a), true
	}
	return "", false
}

func (g *generator) destination(o vsh.Output) (string, bool) {
	switch o.Type {
	case vsh.OutputR:
		if o.Address < 0 || o.Address > posRegister {
			slogger().Warn("shadergen: write to invalid temporary", "register", o.Address)
			return "", false
		}
		return fmt.Sprintf("r%d", o.Address), true
	case vsh.OutputC:
		idx := int(o.Address) + vsh.ConstantBias
		if idx < 0 || idx >= vsh.NumConstants {
			slogger().Warn("shadergen: write to constant out of range", "register", o.Address)
			return "", false
		}
		return fmt.Sprintf("c[%d]", idx), true
	case vsh.OutputO:
		if o.Address == vsh.OutPos {
			return fmt.Sprintf("r%d", posRegister), true
		}
		for _, ov := range outputVars {
			if ov.addr == o.Address {
				return ov.name, true
			}
		}
		slogger().Warn("shadergen: write to unknown output register", "register", o.Address)
		return "", false
	}
	return "", false
}

func (g *generator) param(p vsh.Param, a0x bool) string {
	var s string
	switch p.Type {
	case vsh.ParamR:
		if p.Address < 0 || p.Address > posRegister {
			slogger().Warn("shadergen: read of invalid temporary", "register", p.Address)
			s = "vec4<f32>(0.0)"
			break
		}
		s = fmt.Sprintf("r%d", p.Address)
	case vsh.ParamV:
		if p.Address < 0 || p.Address >= vsh.NumInputs {
			s = "vec4<f32>(0.0)"
			break
		}
		g.inputs[p.Address] = true
		s = fmt.Sprintf("v%d", p.Address)
	case vsh.ParamC:
		idx := int(p.Address) + vsh.ConstantBias
		if a0x {
			s = fmt.Sprintf("%s[clamp(a0 + %d, 0, %d)]", g.consts, idx, vsh.NumConstants-1)
			break
		}
		if idx < 0 || idx >= vsh.NumConstants {
			slogger().Warn("shadergen: constant read out of range", "register", p.Address)
			idx = max(0, min(idx, vsh.NumConstants-1))
		}
		s = fmt.Sprintf("%s[%d]", g.consts, idx)
	default:
		s = "vec4<f32>(0.0)"
	}

	if p.Swizzle != [4]vsh.Swizzle{vsh.SwizzleX, vsh.SwizzleY, vsh.SwizzleZ, vsh.SwizzleW} {
		var sw [4]byte
		for i, c := range p.Swizzle {
			sw[i] = "xyzw"[c]
		}
		s = fmt.Sprintf("(%s).%s", s, sw[:])
	}
	if p.Neg {
		s = "-" + s
	}
	return s
}
