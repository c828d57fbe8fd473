package usecase

import "github.com/user/classifier-service/internal/entity"

// Aggregate reduces per-image detections to one product class and the
// detections that support it. Results must be in processing order, main image first.
//
// When the main image is the only image with detections, the class of its
// highest-scoring detection wins. Otherwise each contributing image casts one
// vote for its own class and the most frequent class wins; ties go to the
// class seen first.
// An empty class means no objects were found.
func Aggregate(results []entity.ImageResult) (string, []entity.Detection) {
	var contributing []entity.ImageResult
	for _, r := range results {
		if len(r.Detections) > 0 {
			contributing = append(contributing, r)
		}
	}
	if len(contributing) == 0 {
		return "", nil
	}

	var final string
	if len(contributing) == 1 && contributing[0].IsMain {
		final = TopClass(contributing[0].Detections)
	} else {
		final = plurality(contributing)
	}
	if final == "" {
		return "", nil
	}

	var kept []entity.Detection
	for _, r := range contributing {
		for _, d := range r.Detections {
			if d.ClassCode == final {
				kept = append(kept, d)
			}
		}
	}
	return final, kept
}

// TopClass returns the class of the highest-scoring detection; the first one wins a tie.
func TopClass(detections []entity.Detection) string {
	best := -1
	for i, d := range detections {
		if d.ClassCode == "" {
			continue
		}
		if best < 0 || d.Score > detections[best].Score {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return detections[best].ClassCode
}

func plurality(results []entity.ImageResult) string {
	counts := make(map[string]int)
	var order []string
	for _, r := range results {
		class := imageClass(r)
		if class == "" {
			continue
		}
		if counts[class] == 0 {
			order = append(order, class)
		}
		counts[class]++
	}

	var winner string
	for _, class := range order {
		if counts[class] > counts[winner] {
			winner = class
		}
	}
	return winner
}

// imageClass is the image's decision, falling back to its top detection when unset.
func imageClass(r entity.ImageResult) string {
	if r.ClassCode != "" {
		return r.ClassCode
	}
	return TopClass(r.Detections)
}
