package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/rexliu/taintd/pkg/config"
	"github.com/rexliu/taintd/pkg/ipc"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	var err error
	switch os.Args[1] {
	case "init":
		err = initProfile(os.Args[2:])
	case "info":
		err = infoCommand(os.Args[2:])
	case "check":
		err = checkCommand(os.Args[2:])
	case "update":
		err = updateCommand(os.Args[2:])
	case "query":
		err = queryCommand(os.Args[2:])
	case "stop":
		err = stopCommand(os.Args[2:])
	case "version":
		fmt.Println("taint CLI 0.2.0")
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s error: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: taint <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init      Initialize a local profile (writes config.toml)")
	fmt.Println("  info      Print daemon identity and status")
	fmt.Println("  check     Display model verification errors (optionally scoped to paths)")
	fmt.Println("  update    Re-verify changed model files (or the given paths)")
	fmt.Println("  query     Send a textual query, e.g. 'model_errors(taint/sources.toml)'")
	fmt.Println("  stop      Request graceful daemon shutdown")
	fmt.Println("  version   Print CLI version")
}

func initProfile(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	profilePath := fs.String("profile", "./_dev_profile", "Profile directory")
	name := fs.String("name", "dev", "Profile name")
	force := fs.Bool("force", false, "Overwrite existing config if present")
	_ = fs.Parse(args)

	if err := os.MkdirAll(*profilePath, 0o700); err != nil {
		return err
	}
	configPath := filepath.Join(*profilePath, "config.toml")
	if _, err := os.Stat(configPath); err == nil && !*force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", configPath)
	}
	cfg := config.DefaultProfile(*name)
	if err := config.Save(configPath, cfg); err != nil {
		return err
	}
	fmt.Printf("initialized profile %s at %s\n", cfg.ProfileName, *profilePath)
	return nil
}

func infoCommand(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	profile := fs.String("profile", "./_dev_profile", "Profile directory")
	socket := fs.String("socket", "", "Override socket path")
	_ = fs.Parse(args)

	resp, err := rpcCall(*profile, *socket, ipc.GetInfo{})
	if err != nil {
		return err
	}
	return printResult(resp)
}

func checkCommand(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	profile := fs.String("profile", "./_dev_profile", "Profile directory")
	socket := fs.String("socket", "", "Override socket path")
	_ = fs.Parse(args)

	resp, err := rpcCall(*profile, *socket, ipc.DisplayTypeError{Paths: fs.Args()})
	if err != nil {
		return err
	}
	var payload struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(resp.Result, &payload); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	if len(payload.Errors) == 0 {
		fmt.Println("No model verification errors.")
		return nil
	}
	for _, e := range payload.Errors {
		fmt.Println(e.Message)
	}
	return nil
}

func updateCommand(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	profile := fs.String("profile", "./_dev_profile", "Profile directory")
	socket := fs.String("socket", "", "Override socket path")
	_ = fs.Parse(args)

	resp, err := rpcCall(*profile, *socket, ipc.IncrementalUpdate{Paths: fs.Args()})
	if err != nil {
		return err
	}
	return printResult(resp)
}

func queryCommand(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	profile := fs.String("profile", "./_dev_profile", "Profile directory")
	socket := fs.String("socket", "", "Override socket path")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: taint query [options] <query-text>")
	}

	resp, err := rpcCall(*profile, *socket, ipc.Query{Text: fs.Arg(0)})
	if err != nil {
		return err
	}
	return printResult(resp)
}

func stopCommand(args []string) error {
	fs := flag.NewFlagSet("stop", flag.ExitOnError)
	profile := fs.String("profile", "./_dev_profile", "Profile directory")
	socket := fs.String("socket", "", "Override socket path")
	_ = fs.Parse(args)

	resp, err := rpcCall(*profile, *socket, ipc.Stop{})
	if err != nil {
		return err
	}
	return printResult(resp)
}

func printResult(resp *ipc.Response) error {
	out, err := json.MarshalIndent(resp.Result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func rpcCall(profile, socketOverride string, cmd ipc.Command) (*ipc.Response, error) {
	socketPath, err := resolveSocketPath(profile, socketOverride)
	if err != nil {
		return nil, err
	}
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", socketPath, err)
	}
	defer conn.Close()

	encoded, err := ipc.EncodeCommand(cmd)
	if err != nil {
		return nil, err
	}
	req := ipc.Request{ID: "cli-" + ipc.NewTraceID(), Command: encoded}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if err := ipc.WriteFrame(conn, payload); err != nil {
		return nil, err
	}
	respBytes, err := ipc.ReadFrame(conn)
	if err != nil {
		return nil, err
	}
	var resp ipc.Response
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("daemon error: %s (%s)", resp.Error.Message, resp.Error.Code)
	}
	return &resp, nil
}

func resolveSocketPath(profile, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	cfg, err := config.LoadProfile(profile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("config not found in %s (run 'taint init --profile %s')", profile, profile)
		}
		return "", fmt.Errorf("load config: %w", err)
	}
	return config.ResolvePath(profile, cfg.IPC.SocketPath), nil
}
