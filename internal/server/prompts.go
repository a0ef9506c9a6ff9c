package server

import "math/rand/v2"

var drawingPrompts = []string{
	"Apple", "Ball", "Cat", "Dog", "Fish", "Sun", "Moon", "Star", "Tree", "House",
	"Car", "Bus", "Train", "Book", "Chair", "Table", "Shoe", "Phone", "Laptop", "Camera",
	"Cloud", "Rain", "Snow", "Flower", "Bird", "Cup", "Bed", "Door", "Window", "Key",
	"Lock", "Hat", "Cap", "Sock", "Glove", "Shirt", "Pants", "Skirt", "Dress", "Watch",
	"Clock", "Brush", "Tooth", "Comb", "Bag", "Box", "Jar", "Bottle", "Fork", "Spoon",
	"Knife", "Plate", "Bowl", "Rocket", "Plane", "Boat", "Truck", "Drum", "Guitar", "Piano",
	"Bell", "Pen", "Pencil", "Crayon", "Marker", "Paint", "Globe", "Map", "Balloon", "Kite",
	"Ladder", "Tent", "Candle", "Lamp", "Robot", "Alien", "Ghost", "Angel", "Heart", "Leaf",
	"Banana", "Mango", "Orange", "Pear", "Grapes", "Burger", "Pizza", "Cake", "Cookie",
	"Icecream", "Candy", "Donut", "Fries", "Submarine", "Castle", "Bridge", "Tower", "Tunnel",
	"Road", "Fence", "Wheel", "Tire", "Helmet",
}

func randomPrompt() string {
	return drawingPrompts[rand.IntN(len(drawingPrompts))]
}
