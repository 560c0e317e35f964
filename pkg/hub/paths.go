package hub

import (
	"fmt"
	"path"
)

// ShortSHALength is the number of commit ID characters in eval branch names.
const ShortSHALength = 7

// Split names a dataset partition.
type Split string

const (
	SplitTrain      Split = "train"
	SplitValidation Split = "validation"
	SplitTest       Split = "test"
)

// Splits lists the known splits in canonical order.
var Splits = []Split{SplitTrain, SplitValidation, SplitTest}

// ParseSplit returns the split named s.
func ParseSplit(s string) (Split, bool) {
	for _, sp := range Splits {
		if string(sp) == s {
			return sp, true
		}
	}
	return "", false
}

const (
	datasetConfigsDir = "conf/dataset"
	metadataFile      = "metadata.yaml"
	checkpointFile    = "model.bin"
	metricsFile       = "metrics.json"
)

// ShortSHA truncates a commit ID to ShortSHALength characters.
func ShortSHA(sha string) string {
	if len(sha) <= ShortSHALength {
		return sha
	}
	return sha[:ShortSHALength]
}

// EvalBranchName is the branch holding evaluation outputs for branch at sha.
func EvalBranchName(branch, sha string) string {
	return fmt.Sprintf("eval-%s-%s", branch, ShortSHA(sha))
}

// URI renders a lakefs:// URI for path on ref.
func URI(repo, ref, p string) string {
	return "lakefs://" + repo + "/" + ref + "/" + p
}

func deltaDir(config string) string {
	return config + "/delta/"
}

func evalDir(config, split, output string) string {
	return path.Join(config, "eval", split, output)
}

// TablePath is the delta table URI of a dataset split.
func TablePath(repo, branch, config, split string) string {
	return URI(repo, branch, deltaDir(config)+split+"/")
}

// EvalTablePath is the delta table URI of an evaluation output.
func EvalTablePath(repo, evalBranch, config, split, output string) string {
	return URI(repo, evalBranch, evalDir(config, split, output)+"/delta")
}

// EvalMetricsPath is the metrics document URI of an evaluation output.
func EvalMetricsPath(repo, evalBranch, config, split, output string) string {
	return URI(repo, evalBranch, evalDir(config, split, output)+"/"+metricsFile)
}
