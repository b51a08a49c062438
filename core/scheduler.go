package core

// TopologicalSort orders actions so that every action appears after all
// of its DependsOn entries, using Kahn's algorithm. Ties among
// simultaneously-ready actions are broken by the actions' original
// position in actions, so two runs of the same config always produce the
// same order regardless of Go's randomized map iteration.
func TopologicalSort(actions []Action) ([]Action, error) {
	index := make(map[string]int, len(actions))
	for i, a := range actions {
		index[a.ID] = i
	}

	inDegree := make([]int, len(actions))
	dependents := make([][]int, len(actions))
	for i, a := range actions {
		for _, dep := range a.DependsOn {
			depIdx, ok := index[dep]
			if !ok {
				return nil, ErrConfig("action %q depends on unknown action %q", a.ID, dep)
			}
			inDegree[i]++
			dependents[depIdx] = append(dependents[depIdx], i)
		}
	}

	queue := make([]int, 0, len(actions))
	for i := range actions {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]Action, 0, len(actions))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, actions[i])
		for _, dep := range dependents[i] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(actions) {
		return nil, cycleError(actions, inDegree)
	}
	return order, nil
}

// cycleError names the actions still blocked after the main sort
// terminates, so the reported error lists the cycle's members (together
// with any actions that depend on them) rather than just stating one
// exists.
func cycleError(actions []Action, inDegree []int) *Error {
	var ids []string
	for i, a := range actions {
		if inDegree[i] > 0 {
			ids = append(ids, a.ID)
		}
	}
	return ErrConfig("cycle detected among actions: %v", ids)
}
