package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hcyang1106/fle-linker/pkg/linker"
	"github.com/hcyang1106/fle-linker/pkg/utils"
)

var version string

// One binary carries all four tools. The tool is picked from the binary
// name (for ld/nm/readfle/exec symlinks) or from the first argument.
func main() {
	tools := map[string]func([]string){
		"ld":      runLd,
		"nm":      runNm,
		"readfle": runReadfle,
		"exec":    runExec,
	}

	name := filepath.Base(os.Args[0])
	args := os.Args[1:]
	if _, ok := tools[name]; !ok {
		if len(args) > 0 {
			if _, ok := tools[args[0]]; ok {
				name = args[0]
				args = args[1:]
			}
		}
	}

	tool, ok := tools[name]
	if !ok {
		fmt.Printf("usage: %s {ld|nm|readfle|exec} [options] file...\n", os.Args[0])
		os.Exit(1)
	}
	tool(args)
}

func runLd(args []string) {
	ctx := linker.NewContext()
	verbose := false

	arg := ""
	readArg := func(name string) bool {
		for _, opt := range utils.AddDashes(name) {
			if args[0] == opt {
				if len(args) == 1 {
					utils.Fatal(fmt.Sprintf("option %s: argument missing", opt))
				}
				arg = args[1]
				args = args[2:]
				return true
			}

			prefix := opt
			if len(name) > 1 {
				prefix += "="
			}
			if strings.HasPrefix(args[0], prefix) {
				arg = args[0][len(prefix):]
				args = args[1:]
				return true
			}
		}
		return false
	}

	readFlag := func(name string) bool {
		for _, opt := range utils.AddDashes(name) {
			if args[0] == opt {
				args = args[1:]
				return true
			}
		}
		return false
	}

	remaining := make([]string, 0)
	for len(args) > 0 {
		if readFlag("help") {
			fmt.Printf("usage: ld [-o OUT] [-e ENTRY] [-shared] file...\n")
			os.Exit(0)
		}

		if readArg("o") || readArg("output") {
			ctx.Args.Output = arg
		} else if readArg("e") || readArg("entry") {
			ctx.Args.Entry = arg
		} else if readFlag("shared") {
			ctx.Args.Shared = true
		} else if readFlag("v") || readFlag("verbose") {
			verbose = true
		} else if readFlag("version") {
			fmt.Printf("fle-ld %s\n", version)
			os.Exit(0)
		} else {
			if args[0][0] == '-' {
				utils.Fatal(fmt.Sprintf("unknown command line option: %s", args[0]))
			}
			remaining = append(remaining, args[0])
			args = args[1:]
		}
	}

	if len(remaining) == 0 {
		utils.Fatal("no input files")
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	ctx.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	inputs := make([]*linker.FLEObject, 0, len(remaining))
	for _, filename := range remaining {
		obj, err := linker.ParseFLEFile(linker.NewFile(filename))
		utils.MustNo(err)
		inputs = append(inputs, obj)
	}

	out, err := linker.Link(ctx, inputs)
	utils.MustNo(err)
	utils.MustNo(linker.WriteFLEFile(out, ctx.Args.Output))
}

func runNm(args []string) {
	if len(args) == 0 {
		utils.Fatal("nm: no input files")
	}
	for _, filename := range args {
		obj, err := linker.ParseFLEFile(linker.NewFile(filename))
		utils.MustNo(err)

		if obj.Type == linker.FileTypeArchive {
			for _, member := range obj.Members {
				fmt.Printf("%s(%s):\n", filename, member.Name)
				linker.Nm(os.Stdout, member)
			}
			continue
		}
		linker.Nm(os.Stdout, obj)
	}
}

func runReadfle(args []string) {
	if len(args) == 0 {
		utils.Fatal("readfle: no input files")
	}
	for _, filename := range args {
		obj, err := linker.ParseFLEFile(linker.NewFile(filename))
		utils.MustNo(err)
		linker.Readfle(os.Stdout, obj)
	}
}

func runExec(args []string) {
	if len(args) != 1 {
		utils.Fatal("exec: expected exactly one executable")
	}
	obj, err := linker.ParseFLEFile(linker.NewFile(args[0]))
	utils.MustNo(err)
	utils.MustNo(linker.Exec(obj))
}
