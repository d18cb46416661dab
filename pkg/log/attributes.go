package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model.
	// Examples: "DecisionTreeClassifier", "GridSearchCV"
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies a specific model instance or run.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "cross_validate", "search"
	OperationKey = "ml.operation"

	// ComponentKey identifies the component performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"

	// SectionKey names the workflow section being executed.
	SectionKey = "workflow.section"

	// RunIDKey identifies one workflow run.
	RunIDKey = "workflow.run_id"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns).
	FeaturesKey = "data.features"

	// ClassesKey indicates the number of distinct labels.
	ClassesKey = "data.classes"

	// PathKey records the file a dataset or artifact was read from or written to.
	PathKey = "data.path"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records classification accuracy.
	AccuracyKey = "metrics.accuracy"

	// ROCAUCKey records area under the ROC curve.
	ROCAUCKey = "metrics.roc_auc"

	// F1Key records the F1 score of the positive class.
	F1Key = "metrics.f1"

	// ScoreKey records a generic scorer value.
	ScoreKey = "metrics.score"

	// ScoringKey names the scorer in use.
	ScoringKey = "metrics.scoring"
)

// Tree structure
const (
	// DepthKey records the depth of a fitted tree.
	DepthKey = "tree.depth"

	// LeavesKey records the number of leaves of a fitted tree.
	LeavesKey = "tree.leaves"

	// NodesKey records the number of nodes of a fitted tree.
	NodesKey = "tree.nodes"
)

// Model selection
const (
	// CandidatesKey records the number of hyperparameter candidates.
	CandidatesKey = "search.candidates"

	// FoldsKey records the number of cross-validation folds.
	FoldsKey = "search.folds"

	// FitsKey records the total number of fits.
	FitsKey = "search.fits"

	// JobsKey records the number of parallel workers.
	JobsKey = "search.n_jobs"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Hyperparameters and Configuration
const (
	// HyperParamsKey contains model hyperparameters as a structured object.
	HyperParamsKey = "model.hyperparams"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// ConfigPathKey records the configuration file in use.
	ConfigPathKey = "config.path"
)

// Standard attribute values.
const (
	OperationFit           = "fit"
	OperationPredict       = "predict"
	OperationScore         = "score"
	OperationCrossValidate = "cross_validate"
	OperationSearch        = "search"
	OperationExport        = "export"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseTesting    = "testing"
	PhaseInference  = "inference"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorPredictionDiff    = "PREDICTION_MISMATCH"
)
