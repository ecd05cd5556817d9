package main

import (
	"fmt"
	"slices"
	"strings"
)

type rootArgs struct {
	overrides []string
}

// parseRootArgs 只提取子命令之前的 -c key=value，其余参数原样交给子命令。
func parseRootArgs(args []string) (rootArgs, []string, error) {
	var root rootArgs
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-c" || arg == "--c":
			if i+1 >= len(args) {
				return rootArgs{}, nil, fmt.Errorf("flag needs an argument: %s", arg)
			}
			i++
			root.overrides = append(root.overrides, args[i])
		case strings.HasPrefix(arg, "-c=") || strings.HasPrefix(arg, "--c="):
			root.overrides = append(root.overrides, arg[strings.Index(arg, "=")+1:])
		default:
			rest = append(rest, args[i:]...)
			return root, rest, nil
		}
	}
	return root, rest, nil
}

// prependOverrides 让子命令自己的 -c 排在后面，同名键以子命令为准。
func prependOverrides(root, sub []string) []string {
	return slices.Concat(root, sub)
}
