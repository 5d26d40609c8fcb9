package providers

import (
	"strconv"
	"strings"
)

// Select picks chapters the way the CLI flags describe them. chapter
// matches a chapter number ("28.5") first and a 1-based index second;
// rng is "start-end" by index; list is "1,3,5" by index. With nothing
// set every chapter is returned.
func Select(all []Chapter, chapter, rng, list string) []Chapter {
	if chapter != "" {
		if byNum := SelectByNumber(all, chapter); len(byNum) > 0 {
			return byNum
		}

		if idx, err := strconv.Atoi(chapter); err == nil && idx > 0 && idx <= len(all) {
			return []Chapter{all[idx-1]}
		}

		return nil
	}

	if rng != "" {
		return SelectRange(all, rng)
	}
	if list != "" {
		return SelectList(all, list)
	}

	return all
}

func SelectByNumber(all []Chapter, number string) []Chapter {
	n, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil || n < 0 {
		return nil
	}

	var out []Chapter
	for _, c := range all {
		if c.Number == n {
			out = append(out, c)
		}
	}

	return out
}

func SelectRange(all []Chapter, rng string) []Chapter {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil
	}

	start, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	end, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return nil
	}
	if start <= 0 || start > end || end > len(all) {
		return nil
	}

	return all[start-1 : end]
}

func SelectList(all []Chapter, list string) []Chapter {
	var out []Chapter
	for p := range strings.SplitSeq(list, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || idx <= 0 || idx > len(all) {
			continue
		}

		out = append(out, all[idx-1])
	}

	return out
}
