/* Package main: helv, a toolchain for the Helv stack language

Helv programs manipulate one shared stack of bytes. Source text is parsed into
a table of programs: program 0 is the whole source file, and every bracketed
block "[ ... ]" becomes another program whose table index is pushed where the
block appears. Control flow instructions pop such indices and run the
programs they name.

The helv command either interprets the table directly (-e), or translates it
into a standalone C program (the default), a Go program (-emit go), a
listing (-emit asm), or a binary image (-emit image) that can be given back
to helv in place of source. The interpreter and the emitted programs agree
on every result, and -check runs both side by side to show it.

Syntax

Instructions are spelled as lowercase words by default:

	'Hi' print print     # prints "iH" #

Short mode spells each instruction as one character. A lone ";" reads one
short word, while ";;" switches short mode on or off until the end of the
current block:

	;;10 3-;;    # pushes 7 #
	10 3 ;-      # the same #

Numbers push their value, which must fit in a byte; quoted text pushes every
byte in order; "#" delimits comments.

Instructions

	word          short  effect
	nop           n      nothing
	kil kill      k      pop a
	dup           d      pop a, push a a
	swp swap      s      swap the top two values
	get           g      pop i, push stack[i]
	set           e      pop i, pop v, stack[i] = v
	hei height    t      push the stack height
	add           +      pop b, pop a, push a + b
	sub subtract  -      pop b, pop a, push a - b
	mul multiply  *      pop b, pop a, push a * b
	div divide    /      pop b, pop a, push a / b
	mod modulus   %      pop b, pop a, push a % b
	exe execute   x      pop f, run f
	ife ifelse    i      pop else, pop if, pop cond, run if when cond != 0, else otherwise
	dwh dowhile   w      pop f, run f then pop a flag, again while it is non-zero
	rep repeat    r      pop f, pop n, run f n times
	pri print     p      pop c, write c
	hlt halt      h      return from the current program

Arithmetic wraps around at 256. Stack indices count from the bottom. Popping
an empty stack, indexing past the top, dividing by zero, repeating zero
times, or naming a program that does not exist stops the whole run with an
error.

Configuration

Defaults for both running and emitting may be kept in a helv.toml file, found
in the working directory or any directory above it:

	[run]
	depth-limit = 262144
	timeout = "10s"

	[emit]
	target = "c"
	stack-size = 99999
	cc = "cc"

*/
package main
