package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBTableCheckError
	DBSaveRunError

	// Schema errors
	SchemaGORMConnectionError
	SchemaMigrateError

	// Workload errors
	WorkloadFileNotFoundError
	WorkloadOpenError
	WorkloadReadError
	WorkloadWriteError
	WorkloadNoCandidatesError

	// Cost cache errors
	CostCacheOpenError

	// Search errors
	SearchInvalidArgumentError
	SearchSolverFailureError
	SearchNoCollectionsError

	// Transport errors
	TransportNoWorkerError
	TransportUnknownBenchmarkError
	TransportChannelError
	WorkerNotLoadedError
)
