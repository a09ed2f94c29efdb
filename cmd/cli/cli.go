package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/aleph-im/aleph-go/cmd/rpc"
	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/signer"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rootCmd = &cobra.Command{
	Use:   "aleph",
	Short: "the aleph.im account, signing and encryption client",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initialize()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(rpc.SoftwareVersion)
	},
}

var (
	client, config, l      = &rpc.Client{}, lib.Config{}, lib.LoggerI(nil)
	metrics, dispatcher    = (*lib.Metrics)(nil), (*signer.Dispatcher)(nil)
	DataDir, chainFlag     = "", ""
	apiServer, channelFlag = "", ""
)

// environment variables read before prompting for key material
const (
	PrivateKeyEnv = "ALEPH_PRIVATE_KEY"
	MnemonicEnv   = "ALEPH_MNEMONIC"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(decryptCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(autoCompleteCmd)
	autoCompleteCmd.AddCommand(generateCompleteCmd)
	autoCompleteCmd.AddCommand(autoCompleteInstallCmd)
	rootCmd.PersistentFlags().StringVar(&DataDir, "data-dir", lib.DefaultDataDirPath(), "custom data directory location")
	rootCmd.PersistentFlags().StringVar(&apiServer, "api-server", "", "override the configured aleph api node")
	rootCmd.PersistentFlags().StringVar(&channelFlag, "channel", "", "override the configured channel")
}

// Execute() runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// initialize() loads the configuration and wires the logger, metrics, dispatcher and api client
func initialize() {
	config = InitializeDataDirectory(DataDir, lib.NewDefaultLogger())
	if apiServer != "" {
		config.APIServer = apiServer
	}
	if channelFlag != "" {
		config.Channel = channelFlag
	}
	l = lib.NewLogger(lib.LoggerConfig{Level: config.GetLogLevel()}, config.DataDirPath)
	metrics = lib.NewMetricsServer(config.MetricsConfig, l)
	dispatcher = signer.NewDispatcher(l, metrics).WithLegacyNULS()
	client = rpc.NewClient(config.APIConfig, dispatcher, l, metrics)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve the stored account over the local signing service",
	Run: func(cmd *cobra.Command, args []string) {
		Serve()
	},
}

// Serve() runs the local signing service until a kill signal is received
func Serve() {
	account := loadSigningAccount()
	// initialize the signing service
	server := rpc.NewServer(account, config.ServerConfig, dispatcher, l, metrics)
	// start the metrics server
	metrics.Start()
	// start the signing service
	server.Start()
	// block until a kill signal is received
	waitForKill()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		l.Error(err.Error())
	}
	// gracefully stop the metrics server
	metrics.Stop()
	os.Exit(0)
}

// waitForKill() blocks until a kill signal is received
func waitForKill() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGABRT)
	// block until kill signal is received
	s := <-stop
	l.Infof("Exit command %s received", s)
}

// readSecret() returns the value of env or prompts for it without echo
func readSecret(env, prompt string) string {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	l.Infof(prompt)
	secret, e := term.ReadPassword(int(os.Stdin.Fd()))
	if e != nil {
		l.Fatal(e.Error())
	}
	if len(secret) == 0 {
		l.Infof("Input cannot be empty")
		return readSecret(env, prompt)
	}
	return strings.TrimSpace(string(secret))
}

// InitializeDataDirectory() creates the data directory and the config.json file if missing, then loads the config
func InitializeDataDirectory(dataDirPath string, log lib.LoggerI) (c lib.Config) {
	if dataDirPath == "" {
		dataDirPath = lib.DefaultDataDirPath()
	}
	// make the data dir if missing
	if err := os.MkdirAll(dataDirPath, 0700); err != nil {
		log.Fatal(err.Error())
	}
	// make the config.json file if missing
	configFilePath := filepath.Join(dataDirPath, lib.ConfigFilePath)
	if _, err := os.Stat(configFilePath); errors.Is(err, os.ErrNotExist) {
		log.Infof("Creating %s file", lib.ConfigFilePath)
		if err = lib.DefaultConfig().WriteToFile(configFilePath); err != nil {
			log.Fatal(err.Error())
		}
	}
	// load the config object
	c, err := lib.NewConfigFromFile(configFilePath)
	if err != nil {
		log.Fatal(err.Error())
	}
	// set the data-directory
	c.DataDirPath = dataDirPath
	return
}

func writeToConsole(a any, err error) {
	if err != nil {
		l.Fatal(err.Error())
	}
	switch a.(type) {
	case int, uint32, uint64:
		p := message.NewPrinter(language.English)
		if _, err := p.Printf("%d\n", a); err != nil {
			l.Fatal(err.Error())
		}
	case string, *string:
		fmt.Println(a)
	default:
		s, err := lib.MarshalJSONIndentString(a)
		if err != nil {
			l.Fatal(err.Error())
		}
		fmt.Println(s)
	}
}

// AUTO COMPLETE CODE BELOW

var autoCompleteCmd = &cobra.Command{
	Use:   "auto-complete",
	Short: "auto-complete generation and installation (for zsh and bash)",
}

var autoCompleteInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "automatically installs shell completion",
	Run: func(cmd *cobra.Command, args []string) {
		shell := detectShell()
		completionScript, profileFile := "", ""
		switch shell {
		case "bash":
			profileFile = getBashProfile()
			completionScript = `
aleph auto-complete generate > ~/.aleph-completion.sh

# Ensure completion script is sourced only once
if ! grep -q 'source ~/.aleph-completion.sh' ` + profileFile + `; then
    echo 'source ~/.aleph-completion.sh' >> ` + profileFile + `
fi`
		case "zsh":
			profileFile = "~/.zshrc"
			completionScript = `
mkdir -p ~/.zsh/completions
aleph auto-complete generate > ~/.zsh/completions/_aleph

# Ensure fpath is set only once
if ! grep -q 'fpath=(~/.zsh/completions $fpath)' ` + profileFile + `; then
    echo 'fpath=(~/.zsh/completions $fpath)' >> ` + profileFile + `
fi

# Ensure compinit is set only once
if ! grep -q 'autoload -Uz compinit && compinit' ` + profileFile + `; then
    echo 'autoload -Uz compinit && compinit' >> ` + profileFile + `
fi`
		default:
			writeToConsole(nil, errors.New("unsupported shell (only zsh or bash is supported)"))
			return
		}
		writeToConsole(fmt.Sprintf("Installing completion for: %s", shell), nil)
		if err := exec.Command("sh", "-c", completionScript).Run(); err != nil {
			writeToConsole(nil, fmt.Errorf("error setting up completion: %s", err.Error()))
			return
		}
		writeToConsole(fmt.Sprintf("Completion installed. Restart your shell or run `source %s`", profileFile), nil)
	},
}

var generateCompleteCmd = &cobra.Command{
	Use:   "generate",
	Short: "generate completion script",
	Run: func(cmd *cobra.Command, args []string) {
		switch detectShell() {
		case "bash":
			_ = rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			_ = rootCmd.GenZshCompletion(os.Stdout)
		default:
			cmd.Println("Unsupported shell. Use: bash or zsh")
		}
	},
}

func detectShell() string {
	shell := os.Getenv("SHELL")
	switch {
	case strings.Contains(shell, "bash"):
		return "bash"
	case strings.Contains(shell, "zsh"):
		return "zsh"
	}
	return ""
}

func getBashProfile() string {
	if _, err := os.Stat(os.Getenv("HOME") + "/.bashrc"); err == nil {
		return "~/.bashrc"
	}
	return "~/.bash_profile"
}
