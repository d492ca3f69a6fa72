package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seasonforge/seasonctl/internal/utils"
)

const (
	testSupportedCombinationCaseNameConstant = "supported_combination"
	testUnknownLevelCaseNameConstant         = "unknown_level"
	testUnknownFormatCaseNameConstant        = "unknown_format"
	testUnknownLevelValueConstant            = "verbose"
	testUnknownFormatValueConstant           = "plain"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logLevel      utils.LogLevel
		logFormat     utils.LogFormat
		expectFailure bool
	}{
		{
			name:      testSupportedCombinationCaseNameConstant,
			logLevel:  utils.LogLevelDebug,
			logFormat: utils.LogFormatConsole,
		},
		{
			name:          testUnknownLevelCaseNameConstant,
			logLevel:      utils.LogLevel(testUnknownLevelValueConstant),
			logFormat:     utils.LogFormatStructured,
			expectFailure: true,
		},
		{
			name:          testUnknownFormatCaseNameConstant,
			logLevel:      utils.LogLevelInfo,
			logFormat:     utils.LogFormat(testUnknownFormatValueConstant),
			expectFailure: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			factory := utils.NewLoggerFactory()
			logger, creationError := factory.CreateLogger(testCase.logLevel, testCase.logFormat)
			if testCase.expectFailure {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}
			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)
		})
	}
}

func TestLoggerFactorySupportsEveryExportedLevel(testInstance *testing.T) {
	factory := utils.NewLoggerFactory()
	for _, logLevel := range []utils.LogLevel{utils.LogLevelDebug, utils.LogLevelInfo, utils.LogLevelWarn, utils.LogLevelError} {
		logger, creationError := factory.CreateLogger(logLevel, utils.LogFormatStructured)
		require.NoError(testInstance, creationError)
		require.NotNil(testInstance, logger)
	}
}
