// Copyright 2015 Google Inc. All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command ebuild resolves a module's dependency graph, compiles a build
// plan against a target platform and toolchain, and executes it with
// bounded parallelism and an incremental on-disk cache.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yldrefruz/ebuild"
	"github.com/yldrefruz/ebuild/cache"
	"github.com/yldrefruz/ebuild/history"
	"github.com/yldrefruz/ebuild/metrics"
	"github.com/yldrefruz/ebuild/tracing"
	"github.com/yldrefruz/ebuild/watch"
)

func main() {
	defer glog.Flush()

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "build":
		err = runBuild(args[1:])
	case "generate":
		err = runGenerate(args[1:])
	case "check":
		err = runCheck(args[1:])
	case "watch":
		err = runWatch(args[1:])
	case "history":
		err = runHistory(args[1:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if _, ok := err.(*usageError); ok {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: ebuild <command> [arguments]

commands:
  build <module-file>                 resolve, plan, and execute a build
  generate compile_commands.json ...  emit a clangd-compatible compile database
  generate buildgraph ...             render the dependency tree
  check circular-dependencies ...     fail if the graph has a cycle
  check print-dependencies ...        print the dependency tree
  watch <module-file>                 rebuild on source changes
  history list|show ...               read the build-history ledger`)
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

// stringList implements flag.Value for repeatable flags (-C, -L, -P, -D).
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// buildContext bundles everything shared by build, generate, and check
// subcommands: the root module's reference and the resolved ModuleContext.
type buildContext struct {
	ref  ebuild.ModuleReference
	mctx ebuild.ModuleContext
}

func resolveModuleContext(moduleFile, configuration, toolchainName, arch string, defines, includePaths, libPaths stringList) (*buildContext, error) {
	platform := ebuild.DefaultPlatforms.HostDefault()
	if platform == nil {
		return nil, fmt.Errorf("ebuild: no platform registered for this host")
	}
	tcName := toolchainName
	if tcName == "" {
		tcName = platform.DefaultToolchain
	}
	toolchain, ok := ebuild.DefaultToolchains.Get(tcName)
	if !ok {
		return nil, &usageError{fmt.Sprintf("ebuild: unknown toolchain %q", tcName)}
	}
	if arch == "" {
		arch = "x86_64"
	}
	if configuration == "" {
		configuration = "debug"
	}

	opts := map[string]string{}
	for _, kv := range defines {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, &usageError{fmt.Sprintf("ebuild: -D value %q is not in key=value form", kv)}
		}
		opts[k] = v
	}

	var instancing ebuild.InstancingParams
	for _, p := range includePaths {
		instancing.ExtraCompilerFlags = append(instancing.ExtraCompilerFlags, "-I"+p)
	}
	for _, p := range libPaths {
		instancing.ExtraLinkerFlags = append(instancing.ExtraLinkerFlags, "-L"+p)
		instancing.ExtraDependencySearchPaths = append(instancing.ExtraDependencySearchPaths, p)
	}

	abs, err := filepath.Abs(moduleFile)
	if err != nil {
		return nil, err
	}
	ref := ebuild.ModuleReference{FilePath: abs}
	mctx := ebuild.ModuleContext{
		Platform:           platform,
		Toolchain:          toolchain,
		TargetArchitecture: arch,
		Configuration:      configuration,
		Options:            opts,
		Instancing:         instancing,
	}
	return &buildContext{ref: ref, mctx: mctx}, nil
}

func newResolver() (*ebuild.Resolver, error) {
	transformers := ebuild.NewOutputTransformerRegistry()
	ebuild.RegisterDefaultTransformers(transformers)
	instances, err := ebuild.NewModuleInstanceCache(ebuild.JSONModuleLoader{}, transformers, 256)
	if err != nil {
		return nil, err
	}
	files := ebuild.NewModuleFileCache()
	return ebuild.NewResolver(instances, files), nil
}

func buildCacheBackend(redisAddr, redisPassword string, redisDB int, s3Bucket, s3Region, s3Endpoint string) (cache.Backend, error) {
	if redisAddr != "" {
		return cache.NewRedisBackend(redisAddr, redisPassword, redisDB, 7*24*time.Hour)
	}
	if s3Bucket != "" {
		return cache.NewS3Backend(context.Background(), cache.S3BackendConfig{
			Bucket:       s3Bucket,
			Region:       s3Region,
			Endpoint:     s3Endpoint,
			UsePathStyle: s3Endpoint != "",
		})
	}
	return nil, nil
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	configuration := fs.String("c", "debug", "build configuration (debug|release)")
	toolchainName := fs.String("toolchain", "", "toolchain to use (defaults to the platform's default)")
	arch := fs.String("t", "x86_64", "target architecture")
	parallel := fs.Int("p", 0, "maximum concurrent compile actions (defaults to NumCPU)")
	dryRun := fs.Bool("n", false, "resolve and plan the build without running any action (the planned actions are not printed)")
	clean := fs.Bool("clean", false, "remove the incremental cache before building")
	verbose := fs.Bool("v", false, "verbose logging")
	var defines, libPaths, includePaths, compilerFlags stringList
	fs.Var(&defines, "D", "define key=value (repeatable)")
	fs.Var(&libPaths, "L", "additional library search path (repeatable)")
	fs.Var(&includePaths, "P", "additional include search path (repeatable)")
	fs.Var(&compilerFlags, "C", "additional compiler flag (repeatable)")
	metricsAddr := fs.String("metrics-addr", "", "serve Prometheus metrics on this address (disabled if empty)")
	redisCacheAddr := fs.String("redis-cache-addr", "", "remote cache: Redis address")
	redisCachePassword := fs.String("redis-cache-password", "", "remote cache: Redis password")
	s3CacheBucket := fs.String("s3-cache-bucket", "", "remote cache: S3 bucket name")
	s3CacheRegion := fs.String("s3-cache-region", "us-east-1", "remote cache: S3 region")
	s3CacheEndpoint := fs.String("s3-cache-endpoint", "", "remote cache: S3-compatible endpoint (MinIO etc.)")
	otlpEndpoint := fs.String("otlp-endpoint", "", "OTLP gRPC collector endpoint (disabled if empty)")
	historyDB := fs.String("history-db", "", "build-history SQLite path or Postgres DSN (postgres:// prefix selects Postgres)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return &usageError{"ebuild build: expected exactly one module-file argument"}
	}
	moduleFile := fs.Arg(0)
	if *verbose {
		flag.Set("v", "1")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var providers *tracing.Providers
	if *otlpEndpoint != "" {
		var err error
		providers, err = tracing.Init(ctx, tracing.Config{Endpoint: *otlpEndpoint, ServiceName: "ebuild", ServiceVersion: ebuildVersion})
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		defer providers.Shutdown(context.Background())
	}

	var metricsServer *metrics.Server
	var metricsCollector *metrics.Metrics
	if *metricsAddr != "" {
		registry := prometheus.NewRegistry()
		metricsCollector = metrics.New(registry)
		metricsServer = metrics.NewServer(*metricsAddr, registry)
		go func() {
			if err := metricsServer.Serve(); err != nil {
				glog.Errorf("metrics server: %v", err)
			}
		}()
		defer metricsServer.Shutdown(context.Background())
	}

	var historyStore history.Store
	if *historyDB != "" {
		var err error
		if strings.HasPrefix(*historyDB, "postgres://") || strings.HasPrefix(*historyDB, "postgresql://") {
			historyStore, err = history.NewPostgresStore(*historyDB)
		} else {
			historyStore, err = history.NewSQLiteStore(*historyDB)
		}
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		defer historyStore.Close()
	}

	bc, err := resolveModuleContext(moduleFile, *configuration, *toolchainName, *arch, defines, includePaths, libPaths)
	if err != nil {
		return err
	}
	bc.mctx.Instancing.ExtraCompilerFlags = append(bc.mctx.Instancing.ExtraCompilerFlags, compilerFlags...)

	moduleDir := filepath.Dir(moduleFile)
	if *clean {
		if err := os.RemoveAll(filepath.Join(moduleDir, ".ebuild")); err != nil {
			return fmt.Errorf("ebuild: clean: %w", err)
		}
	}

	remote, err := buildCacheBackend(*redisCacheAddr, *redisCachePassword, 0, *s3CacheBucket, *s3CacheRegion, *s3CacheEndpoint)
	if err != nil {
		return fmt.Errorf("remote cache: %w", err)
	}

	resolver, err := newResolver()
	if err != nil {
		return err
	}

	start := time.Now()
	resolveCtx, resolveSpan := providers.StartSpan(ctx, "resolve")
	g, err := resolver.Build(resolveCtx, bc.ref, bc.mctx)
	resolveSpan.End()
	if err != nil {
		return fmt.Errorf("ebuild: resolve: %w", err)
	}
	if ok, path := ebuild.CheckCircularDependencies(g); !ok {
		return fmt.Errorf("ebuild: circular dependency: %s", strings.Join(path, " -> "))
	}

	planner := ebuild.NewPlanner(ebuild.DefaultPlatforms, ebuild.DefaultToolchains)
	planCtx, planSpan := providers.StartSpan(ctx, "plan")
	err = planner.Compile(planCtx, g, bc.mctx)
	planSpan.End()
	if err != nil {
		return fmt.Errorf("ebuild: plan: %w", err)
	}

	stats := ebuild.NewBuildStats()
	compDB := &ebuild.CompDB{Scanner: ebuild.NewIncludeScanner(4096), Remote: remote}
	exec := ebuild.NewExecutor(ebuild.ExecutorOptions{
		MaxWorkers:    defaultWorkers(*parallel),
		GenerateOnly:  *dryRun,
		Generator:     ebuild.NewCompileCommandsGenerator(),
		CompDB:        compDB,
		PlatformRoots: bc.mctx.Platform.SystemIncludeRoots,
		Stats:         stats,
	})

	execCtx, execSpan := providers.StartSpan(ctx, "execute")
	buildErr := exec.Exec(execCtx, g)
	execSpan.End()
	elapsed := time.Since(start)
	stats.Dump(os.Stderr)

	if metricsCollector != nil {
		metricsCollector.ObserveCompile(bc.ref.FilePath, elapsed, buildErr)
	}
	if historyStore != nil {
		result := "success"
		errMsg := ""
		if buildErr != nil {
			result = "failure"
			errMsg = buildErr.Error()
		}
		compileCount, compileSkipped := stats.Count("compile")
		linkCount, _ := stats.Count("link")
		if _, err := historyStore.RecordBuild(context.Background(), history.Record{
			Module:        bc.ref.FilePath,
			Configuration: *configuration,
			TargetArch:    *arch,
			StartedAt:     start,
			FinishedAt:    time.Now(),
			Result:        result,
			CompileCount:  compileCount,
			SkipCount:     compileSkipped,
			LinkCount:     linkCount,
			Error:         errMsg,
		}); err != nil {
			glog.Warningf("history: failed to record build: %v", err)
		}
	}
	return buildErr
}

func defaultWorkers(requested int) int {
	if requested > 0 {
		return requested
	}
	return runtime.NumCPU()
}

func runGenerate(args []string) error {
	if len(args) == 0 {
		return &usageError{"ebuild generate: expected a subcommand (compile_commands.json|buildgraph)"}
	}
	switch args[0] {
	case "compile_commands.json":
		return runGenerateCompileCommands(args[1:])
	case "buildgraph":
		return runGenerateBuildgraph(args[1:])
	default:
		return &usageError{fmt.Sprintf("ebuild generate: unknown subcommand %q", args[0])}
	}
}

func runGenerateCompileCommands(args []string) error {
	fs := flag.NewFlagSet("generate compile_commands.json", flag.ContinueOnError)
	out := fs.String("o", "compile_commands.json", "output path")
	configuration := fs.String("c", "debug", "build configuration")
	var defines stringList
	fs.Var(&defines, "D", "define key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return &usageError{"ebuild generate compile_commands.json: expected exactly one module-file argument"}
	}

	bc, err := resolveModuleContext(fs.Arg(0), *configuration, "", "", defines, nil, nil)
	if err != nil {
		return err
	}
	ctx := context.Background()
	resolver, err := newResolver()
	if err != nil {
		return err
	}
	g, err := resolver.Build(ctx, bc.ref, bc.mctx)
	if err != nil {
		return err
	}
	planner := ebuild.NewPlanner(ebuild.DefaultPlatforms, ebuild.DefaultToolchains)
	if err := planner.Compile(ctx, g, bc.mctx); err != nil {
		return err
	}
	gen := ebuild.NewCompileCommandsGenerator()
	exec := ebuild.NewExecutor(ebuild.ExecutorOptions{GenerateOnly: true, Generator: gen})
	if err := exec.Exec(ctx, g); err != nil {
		return err
	}
	return gen.WriteFile(*out)
}

func runGenerateBuildgraph(args []string) error {
	fs := flag.NewFlagSet("generate buildgraph", flag.ContinueOnError)
	format := fs.String("format", "String", "output format: String or Html")
	configuration := fs.String("c", "debug", "build configuration")
	var defines stringList
	fs.Var(&defines, "D", "define key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return &usageError{"ebuild generate buildgraph: expected exactly one module-file argument"}
	}

	bc, err := resolveModuleContext(fs.Arg(0), *configuration, "", "", defines, nil, nil)
	if err != nil {
		return err
	}
	ctx := context.Background()
	resolver, err := newResolver()
	if err != nil {
		return err
	}
	g, err := resolver.Build(ctx, bc.ref, bc.mctx)
	if err != nil {
		return err
	}

	w := ebuild.NewBuildGraphWriter()
	switch *format {
	case "Html":
		w.WriteHTML(os.Stdout, g)
	case "String", "":
		w.WriteText(os.Stdout, g)
	default:
		return &usageError{fmt.Sprintf("ebuild generate buildgraph: unknown --format %q", *format)}
	}
	return nil
}

func runCheck(args []string) error {
	if len(args) == 0 {
		return &usageError{"ebuild check: expected a subcommand (circular-dependencies|print-dependencies)"}
	}
	switch args[0] {
	case "circular-dependencies":
		return runCheckCircular(args[1:])
	case "print-dependencies":
		return runCheckPrint(args[1:])
	default:
		return &usageError{fmt.Sprintf("ebuild check: unknown subcommand %q", args[0])}
	}
}

func buildGraphForCheck(moduleFile string) (*ebuild.Graph, error) {
	bc, err := resolveModuleContext(moduleFile, "debug", "", "", nil, nil, nil)
	if err != nil {
		return nil, err
	}
	resolver, err := newResolver()
	if err != nil {
		return nil, err
	}
	return resolver.Build(context.Background(), bc.ref, bc.mctx)
}

func runCheckCircular(args []string) error {
	fs := flag.NewFlagSet("check circular-dependencies", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return &usageError{"ebuild check circular-dependencies: expected exactly one module-file argument"}
	}
	g, err := buildGraphForCheck(fs.Arg(0))
	if err != nil {
		return err
	}
	if ok, path := ebuild.CheckCircularDependencies(g); !ok {
		return fmt.Errorf("ebuild: circular dependency: %s", strings.Join(path, " -> "))
	}
	fmt.Println("no circular dependencies")
	return nil
}

func runCheckPrint(args []string) error {
	fs := flag.NewFlagSet("check print-dependencies", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return &usageError{"ebuild check print-dependencies: expected exactly one module-file argument"}
	}
	g, err := buildGraphForCheck(fs.Arg(0))
	if err != nil {
		return err
	}
	ebuild.CheckPrintDependencies(os.Stdout, g)
	return nil
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	configuration := fs.String("c", "debug", "build configuration")
	cronSchedule := fs.String("cron", "", "fallback sweep schedule (defaults to every two minutes)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return &usageError{"ebuild watch: expected exactly one module-file argument"}
	}
	moduleFile := fs.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(watch.Options{
		Roots:        []string{filepath.Dir(moduleFile)},
		CronSchedule: *cronSchedule,
	}, func(ctx context.Context) error {
		bc, err := resolveModuleContext(moduleFile, *configuration, "", "", nil, nil, nil)
		if err != nil {
			return err
		}
		resolver, err := newResolver()
		if err != nil {
			return err
		}
		g, err := resolver.Build(ctx, bc.ref, bc.mctx)
		if err != nil {
			return err
		}
		planner := ebuild.NewPlanner(ebuild.DefaultPlatforms, ebuild.DefaultToolchains)
		if err := planner.Compile(ctx, g, bc.mctx); err != nil {
			return err
		}
		exec := ebuild.NewExecutor(ebuild.ExecutorOptions{
			CompDB:        &ebuild.CompDB{Scanner: ebuild.NewIncludeScanner(4096)},
			PlatformRoots: bc.mctx.Platform.SystemIncludeRoots,
		})
		return exec.Exec(ctx, g)
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func runHistory(args []string) error {
	if len(args) == 0 {
		return &usageError{"ebuild history: expected a subcommand (list|show)"}
	}
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	db := fs.String("db", defaultHistoryPath(), "SQLite path or Postgres DSN")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	var store history.Store
	var err error
	if strings.HasPrefix(*db, "postgres://") || strings.HasPrefix(*db, "postgresql://") {
		store, err = history.NewPostgresStore(*db)
	} else {
		store, err = history.NewSQLiteStore(*db)
	}
	if err != nil {
		return err
	}
	defer store.Close()

	switch args[0] {
	case "list":
		records, err := store.List(context.Background(), 20)
		if err != nil {
			return err
		}
		for _, r := range records {
			fmt.Printf("%d\t%s\t%s\t%s\t%s\n", r.ID, r.Module, r.Configuration, r.Result, r.FinishedAt.Format(time.RFC3339))
		}
		return nil
	case "show":
		if fs.NArg() != 1 {
			return &usageError{"ebuild history show: expected exactly one id argument"}
		}
		id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
		if err != nil {
			return &usageError{fmt.Sprintf("ebuild history show: invalid id %q", fs.Arg(0))}
		}
		r, err := store.Get(context.Background(), id)
		if err != nil {
			return err
		}
		fmt.Printf("module:        %s\n", r.Module)
		fmt.Printf("configuration: %s\n", r.Configuration)
		fmt.Printf("target arch:   %s\n", r.TargetArch)
		fmt.Printf("started:       %s\n", r.StartedAt.Format(time.RFC3339))
		fmt.Printf("finished:      %s\n", r.FinishedAt.Format(time.RFC3339))
		fmt.Printf("result:        %s\n", r.Result)
		fmt.Printf("compiles:      %d (skipped %d)\n", r.CompileCount, r.SkipCount)
		fmt.Printf("links:         %d\n", r.LinkCount)
		if r.Error != "" {
			fmt.Printf("error:         %s\n", r.Error)
		}
		return nil
	default:
		return &usageError{fmt.Sprintf("ebuild history: unknown subcommand %q", args[0])}
	}
}

func defaultHistoryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "ebuild-history.db"
	}
	return filepath.Join(dir, "ebuild", "history.db")
}

const ebuildVersion = "0.1.0"
