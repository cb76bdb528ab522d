package cycle

// Detail describes what a theme covers.
type Detail struct {
	Description string   `json:"description"`
	KeyProblems []string `json:"keyProblems"`
	Difficulty  string   `json:"difficulty"`
}

var details = map[string]Detail{
	"Arrays, Two Pointers, Sliding Window": {
		Description: "Array fundamentals, two-pointer scans and sliding windows over subarrays.",
		KeyProblems: []string{"Two Sum", "Container With Most Water", "Longest Substring Without Repeating Characters", "Trapping Rain Water"},
		Difficulty:  "Easy → Medium",
	},
	"HashMaps, Sets, Linked Lists": {
		Description: "Constant-time lookup structures and linked list manipulation.",
		KeyProblems: []string{"Reverse Linked List", "Linked List Cycle", "Group Anagrams", "LRU Cache"},
		Difficulty:  "Easy → Hard",
	},
	"Binary Search, Intervals": {
		Description: "Binary search over sorted arrays and interval merging.",
		KeyProblems: []string{"Binary Search", "Search in Rotated Sorted Array", "Merge Intervals", "Insert Interval"},
		Difficulty:  "Medium",
	},
	"Trees DFS/BFS": {
		Description: "Depth-first and breadth-first tree traversals.",
		KeyProblems: []string{"Invert Binary Tree", "Maximum Depth of Binary Tree", "Binary Tree Level Order Traversal", "Serialize and Deserialize Binary Tree"},
		Difficulty:  "Easy → Hard",
	},
	"Graphs + Heaps": {
		Description: "Graph search and priority queues.",
		KeyProblems: []string{"Number of Islands", "Clone Graph", "Kth Largest Element", "Top K Frequent Elements"},
		Difficulty:  "Medium → Hard",
	},
	"Backtracking + Greedy": {
		Description: "Exhaustive search with backtracking and greedy choices.",
		KeyProblems: []string{"Permutations", "Combination Sum", "Word Search", "Jump Game"},
		Difficulty:  "Medium → Hard",
	},
	"DP (1D)": {
		Description: "One-dimensional dynamic programming.",
		KeyProblems: []string{"Climbing Stairs", "House Robber", "Coin Change", "Longest Increasing Subsequence"},
		Difficulty:  "Medium",
	},
	"Advanced Arrays": {
		Description: "Prefix sums, Kadane and harder sliding windows.",
		KeyProblems: []string{"Maximum Subarray", "Product of Array Except Self", "3Sum", "Subarray Sum Equals K"},
		Difficulty:  "Medium → Hard",
	},
	"HashMaps + Tries": {
		Description: "String-oriented structures for fast prefix search.",
		KeyProblems: []string{"Implement Trie", "Word Search II", "Design Add and Search Words Data Structure", "Longest Common Prefix"},
		Difficulty:  "Medium → Hard",
	},
	"Advanced Binary Search": {
		Description: "Binary search over answer spaces and unusual arrays.",
		KeyProblems: []string{"Find Minimum in Rotated Sorted Array", "Search a 2D Matrix", "Koko Eating Bananas", "Median of Two Sorted Arrays"},
		Difficulty:  "Medium → Hard",
	},
	"Binary Trees + BST": {
		Description: "Binary search trees and their ordering properties.",
		KeyProblems: []string{"Validate Binary Search Tree", "Kth Smallest Element in BST", "Lowest Common Ancestor", "Construct Binary Tree from Preorder and Inorder"},
		Difficulty:  "Medium → Hard",
	},
	"Graphs + Dijkstra": {
		Description: "Shortest paths on weighted graphs.",
		KeyProblems: []string{"Network Delay Time", "Cheapest Flights Within K Stops", "Course Schedule", "Word Ladder"},
		Difficulty:  "Medium → Hard",
	},
	"Advanced Backtracking": {
		Description: "N-Queens, Sudoku and partitioning problems.",
		KeyProblems: []string{"N-Queens", "Sudoku Solver", "Palindrome Partitioning", "Letter Combinations of a Phone Number"},
		Difficulty:  "Hard",
	},
	"DP (2D)": {
		Description: "Grid, subsequence and knapsack dynamic programming.",
		KeyProblems: []string{"Unique Paths", "Longest Common Subsequence", "Edit Distance", "Regular Expression Matching"},
		Difficulty:  "Medium → Hard",
	},
}

// legacyNames maps theme names found in snapshots written by the earlier
// tracker to the current rotation's names.
var legacyNames = map[string]string{
	"Arrays Avanzado":        "Advanced Arrays",
	"Binary Search Avanzado": "Advanced Binary Search",
	"Backtracking Avanzado":  "Advanced Backtracking",
}

// Details returns the description of a theme. Legacy names resolve to their
// current theme. Unknown themes (for example a snapshot written by an older
// rotation) report ok=false.
func Details(theme string) (Detail, bool) {
	if name, ok := legacyNames[theme]; ok {
		theme = name
	}
	d, ok := details[theme]
	return d, ok
}
