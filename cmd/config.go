package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "pymute"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	modulesFlagName      = "modules"
	categoriesFlagName   = "categories"
	testsFlagName        = "tests"
	runnerFlagName       = "runner"
	environmentFlagName  = "environment"
	outputLevelFlagName  = "output-level"
	parallelFlagName     = "parallel"
	maxMutantsFlagName   = "max-mutants"
	seedFlagName         = "seed"
	inPlaceFlagName      = "in-place"
	skipResolvedFlagName = "skip-resolved"
	noCacheFlagName      = "no-cache"
	cacheFileFlagName    = "cache-file"
	summaryFileFlagName  = "summary-file"
	verboseFlagName      = "verbose"
	logFileFlagName      = "log-file"

	modulesConfigKey      = "scan.modules"
	categoriesConfigKey   = "scan.categories"
	testPrefixConfigKey   = "scan.test_prefix"
	testSuffixConfigKey   = "scan.test_suffix"
	testsConfigKey        = "oracle.tests"
	runnerConfigKey       = "oracle.runner"
	environmentConfigKey  = "oracle.environment"
	outputLevelConfigKey  = "oracle.output_level"
	parallelConfigKey     = "run.parallel"
	maxMutantsConfigKey   = "run.max_mutants"
	seedConfigKey         = "run.seed"
	inPlaceConfigKey      = "run.in_place"
	skipResolvedConfigKey = "cache.skip_resolved"
	cacheFileConfigKey    = "cache.file"
	summaryFileConfigKey  = "summary.file"

	defaultModules     = "**/*.py"
	defaultTests       = "."
	defaultRunner      = "pytest"
	defaultEnvironment = ""
	defaultOutputLevel = "missed"
	defaultParallel    = 1
	defaultMaxMutants  = 0
	defaultSeed        = 42
	defaultTestPrefix  = "test_"
	defaultTestSuffix  = "_test.py"
	defaultCacheFile   = ".pymute_cache.csv"
	defaultSummaryFile = ".pymute_summary.yaml"

	envPrefix = "PYMUTE"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".pymute.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)

	viper.SetDefault(modulesConfigKey, defaultModules)
	viper.SetDefault(categoriesConfigKey, []string{})
	viper.SetDefault(testPrefixConfigKey, defaultTestPrefix)
	viper.SetDefault(testSuffixConfigKey, defaultTestSuffix)
	viper.SetDefault(testsConfigKey, defaultTests)
	viper.SetDefault(runnerConfigKey, defaultRunner)
	viper.SetDefault(environmentConfigKey, defaultEnvironment)
	viper.SetDefault(outputLevelConfigKey, defaultOutputLevel)
	viper.SetDefault(parallelConfigKey, defaultParallel)
	viper.SetDefault(maxMutantsConfigKey, defaultMaxMutants)
	viper.SetDefault(seedConfigKey, defaultSeed)
	viper.SetDefault(inPlaceConfigKey, false)
	viper.SetDefault(skipResolvedConfigKey, false)
	viper.SetDefault(noCacheFlagName, false)
	viper.SetDefault(cacheFileConfigKey, defaultCacheFile)
	viper.SetDefault(summaryFileConfigKey, defaultSummaryFile)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
