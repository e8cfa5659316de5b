package mecab

import "math"

// logSumExp returns log(exp(x)+exp(y)); init discards x.
func logSumExp(x, y float64, init bool) float64 {
	if init {
		return y
	}
	vmin, vmax := math.Min(x, y), math.Max(x, y)
	if vmax > vmin+50 {
		return vmax
	}
	return vmax + math.Log(math.Exp(vmin-vmax)+1.0)
}

// forwardBackward computes alpha, beta and marginal probabilities over
// every node and path of a parsed lattice, and sets Z.
func forwardBackward(l *Lattice) {
	theta := l.theta
	for _, n := range l.order {
		n.alpha = 0
		for p := n.lpath; p != nil; p = p.lnext {
			n.alpha = logSumExp(n.alpha, -theta*float64(p.cost)+p.lnode.alpha, p == n.lpath)
		}
	}
	for i := len(l.order) - 1; i >= 0; i-- {
		n := l.order[i]
		n.beta = 0
		for p := n.rpath; p != nil; p = p.rnext {
			n.beta = logSumExp(n.beta, -theta*float64(p.cost)+p.rnode.beta, p == n.rpath)
		}
	}

	l.z = l.eos.alpha
	for _, n := range l.order {
		n.prob = math.Exp(n.alpha + n.beta - l.z)
		for p := n.lpath; p != nil; p = p.lnext {
			p.prob = math.Exp(p.lnode.alpha - theta*float64(p.cost) + p.rnode.beta - l.z)
		}
	}
}
