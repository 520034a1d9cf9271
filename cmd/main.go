package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"liveforge/internal/bootcfg"
	"liveforge/internal/chroot"
	"liveforge/internal/config"
	"liveforge/internal/hostdeps"
	"liveforge/internal/image"
	"liveforge/internal/pipeline"
	"liveforge/internal/rootfs"
)

var (
	configPath   string
	outputPath   string
	skipHostDeps bool
)

var rootCmd = &cobra.Command{
	Use:   "liveforge",
	Short: "liveforge - tool for building bootable Linux live images",
	Long: `liveforge assembles a bootable Debian-based live ISO: it bootstraps a
minimal root filesystem, installs and configures a desktop inside a chroot,
compresses the tree into a squashfs image and generates a GRUB-bootable ISO.
`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the live ISO image",
	Long: `Build the live ISO image. With no flags the built-in defaults are used;
a YAML config file overrides individual settings. Must be run as root.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Geteuid() != 0 {
			return fmt.Errorf("build must be run as root")
		}

		cfg := config.Default()
		if configPath != "" {
			if err := config.Load(configPath, cfg); err != nil {
				return err
			}
			fmt.Printf("Using config: %s\n", configPath)
		}
		if outputPath != "" {
			cfg.Output = outputPath
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}

		fmt.Printf("Building %s %s (%s/%s)\n", cfg.Name, cfg.Version, cfg.Suite, cfg.Arch)
		fmt.Printf("Output will be saved to: %s\n", cfg.Output)

		if err := os.MkdirAll(cfg.WorkDir, 0755); err != nil {
			return fmt.Errorf("failed to create work directory: %w", err)
		}

		out := cmd.OutOrStdout()
		env := chroot.New(cfg.RootfsDir(), out)

		// Pseudo-filesystem mounts must be released on every exit path:
		// normal completion, a failed step, or an interrupt.
		cleanups := pipeline.NewCleanStack()
		cleanups.Push(func() { env.Close() })
		defer cleanups.Cleanup()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		go func() {
			s := <-sig
			fmt.Fprintf(out, "\nreceived %v, cleaning up...\n", s)
			cleanups.Cleanup()
			os.Exit(1)
		}()

		fs := afero.NewOsFs()
		steps := []pipeline.Step{
			{Name: "host-deps", Run: func(ctx context.Context) error {
				if skipHostDeps {
					fmt.Fprintln(out, "skipping host dependency installation")
					return hostdeps.Check(out)
				}
				return hostdeps.Install(ctx, out)
			}},
			{Name: "rootfs", Run: func(ctx context.Context) error {
				return rootfs.Build(ctx, cfg, env, out)
			}},
			{Name: "configure", Run: func(ctx context.Context) error {
				return rootfs.Configure(ctx, cfg, env, out)
			}},
			{Name: "iso-layout", Run: func(ctx context.Context) error {
				return image.BuildLayout(fs, cfg, out)
			}},
			{Name: "squashfs", Run: func(ctx context.Context) error {
				return image.PackSquashfs(ctx, cfg, env, out)
			}},
			{Name: "boot-config", Run: func(ctx context.Context) error {
				return bootcfg.WriteGrubCfg(fs, cfg.ISODir(), cfg)
			}},
			{Name: "iso", Run: func(ctx context.Context) error {
				return image.CreateISO(ctx, cfg, out)
			}},
		}

		return pipeline.Run(cmd.Context(), out, steps)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that required host tools are installed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return hostdeps.Check(cmd.OutOrStdout())
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the working directory",
	Long: `Remove the working directory, unmounting any pseudo-filesystems still
bound under it first. Must be run as root.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Geteuid() != 0 {
			return fmt.Errorf("clean must be run as root")
		}

		cfg := config.Default()
		if configPath != "" {
			if err := config.Load(configPath, cfg); err != nil {
				return err
			}
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		env := chroot.New(cfg.RootfsDir(), out)
		env.Close()

		fmt.Fprintf(out, "Removing %s\n", cfg.WorkDir)
		return os.RemoveAll(cfg.WorkDir)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of liveforge",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("liveforge v0.1.0")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file")

	buildCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path for the ISO image")
	buildCmd.Flags().BoolVar(&skipHostDeps, "skip-host-deps", false, "Only check host tools instead of installing them")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	buildCmd.SilenceUsage = true
	buildCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
